// Package pdf implementa la representación gráfica del kardex de un artículo:
// el historial de movimientos del ledger con saldo acumulado, en página A4.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/domain/entity"
)

var _ ledger.KardexPDFGenerator = (*KardexGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// KardexGenerator implementa ledger.KardexPDFGenerator usando Maroto v2.
type KardexGenerator struct{}

// NewKardexGenerator construye el generador.
func NewKardexGenerator() *KardexGenerator { return &KardexGenerator{} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes. movements llega del más
// reciente al más antiguo; el saldo acumulado se calcula recorriendo al revés.
func (g *KardexGenerator) GenerateKardexPDF(
	_ context.Context,
	item *entity.Item,
	movements []*entity.Movement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())

	// Saldo acumulado en orden cronológico.
	saldos := make([]decimal.Decimal, len(movements))
	running := decimal.Zero
	for i := len(movements) - 1; i >= 0; i-- {
		running = running.Add(movements[i].Quantity)
		saldos[i] = running
	}
	for i, mov := range movements {
		m.AddRows(detailRow(mov, saldos[i]))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Movimientos: %d — Saldo final: %s %s", len(movements), running.String(), item.Unit),
			props.Text{Size: 8, Color: colorGray, Align: align.Right},
		)),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: SKU + nombre del artículo (izq) y unidad (der).
func headerRow(item *entity.Item) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(item.Name, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New("SKU: "+item.SKU, props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Unidad: "+item.Unit, props.Text{Size: 9, Align: align.Right, Top: 2}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := func(label string, width int, al align.Type) core.Col {
		return col.New(width).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Align: al,
		}))
	}
	return row.New(7).Add(
		header("Fecha", 2, align.Left),
		header("Tipo", 2, align.Left),
		header("Bodega", 2, align.Left),
		header("Referencia", 2, align.Left),
		header("Cantidad", 1, align.Right),
		header("Costo unit.", 1, align.Right),
		header("Costo total", 1, align.Right),
		header("Saldo", 1, align.Right),
	)
}

func detailRow(mov *entity.Movement, saldo decimal.Decimal) core.Row {
	cell := func(value string, width int, al align.Type) core.Col {
		return col.New(width).Add(text.New(value, props.Text{Size: 8, Align: al}))
	}
	return row.New(6).Add(
		cell(mov.CreatedAt.Format("02/01/2006"), 2, align.Left),
		cell(mov.Type, 2, align.Left),
		cell(mov.WarehouseID, 2, align.Left),
		cell(mov.Reference, 2, align.Left),
		cell(mov.Quantity.String(), 1, align.Right),
		cell(mov.UnitCost.StringFixed(2), 1, align.Right),
		cell(mov.TotalCost.StringFixed(2), 1, align.Right),
		cell(saldo.String(), 1, align.Right),
	)
}
