// Package memory implementa los puertos de persistencia del motor sobre mapas en
// memoria, detrás de las mismas interfaces que la implementación PostgreSQL.
// Se usa en pruebas y en modo demo; las transacciones se serializan con un mutex
// y se revierten restaurando un snapshot del estado.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/application/receiving"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)
var _ receiving.TxRunner = (*Store)(nil)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	txMu sync.Mutex   // serializa transacciones (sustituto del row-lock de Postgres)
	mu   sync.RWMutex // protege los mapas

	items        map[string]entity.Item
	warehouses   map[string]entity.Warehouse
	balances     map[string]entity.StockBalance
	movements    []entity.Movement
	reservations map[string]entity.Reservation
	orders       map[string]entity.PurchaseOrder
	receipts     map[string]entity.ReceiptRecord
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:        map[string]entity.Item{},
		warehouses:   map[string]entity.Warehouse{},
		balances:     map[string]entity.StockBalance{},
		reservations: map[string]entity.Reservation{},
		orders:       map[string]entity.PurchaseOrder{},
		receipts:     map[string]entity.ReceiptRecord{},
	}
}

func balanceKey(itemID, warehouseID string) string { return itemID + "|" + warehouseID }
func receiptKey(orderID, key string) string        { return orderID + "|" + key }

// SeedItem registra un artículo de catálogo (los catálogos son externos en producción).
func (s *Store) SeedItem(item entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// SeedWarehouse registra una bodega de catálogo.
func (s *Store) SeedWarehouse(wh entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[wh.ID] = wh
}

// ── Snapshot / rollback ───────────────────────────────────────────────────────

type snapshot struct {
	balances     map[string]entity.StockBalance
	movements    []entity.Movement
	reservations map[string]entity.Reservation
	orders       map[string]entity.PurchaseOrder
	receipts     map[string]entity.ReceiptRecord
}

func cloneOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	out := o
	out.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		balances:     make(map[string]entity.StockBalance, len(s.balances)),
		movements:    append([]entity.Movement(nil), s.movements...),
		reservations: make(map[string]entity.Reservation, len(s.reservations)),
		orders:       make(map[string]entity.PurchaseOrder, len(s.orders)),
		receipts:     make(map[string]entity.ReceiptRecord, len(s.receipts)),
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.reservations {
		snap.reservations[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.receipts {
		snap.receipts[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = snap.balances
	s.movements = snap.movements
	s.reservations = snap.reservations
	s.orders = snap.orders
	s.receipts = snap.receipts
}

// Run ejecuta fn como transacción: serializada, y revertida por snapshot si falla.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	resRepo repository.ReservationRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(s.Movements(), s.Stock(), s.Reservations()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunReceiving ejecuta el protocolo de recepción con la misma semántica que Run.
func (s *Store) RunReceiving(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.PurchaseOrderRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(s.Movements(), s.Stock(), s.Orders(), s.Receipts()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ── Repositorios ──────────────────────────────────────────────────────────────

// Stock devuelve el repositorio de saldos.
func (s *Store) Stock() repository.StockRepository { return &stockRepo{s} }

// Movements devuelve el repositorio del log de movimientos.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s} }

// Reservations devuelve el repositorio de reservas.
func (s *Store) Reservations() repository.ReservationRepository { return &reservationRepo{s} }

// Orders devuelve el repositorio de órdenes de compra.
func (s *Store) Orders() repository.PurchaseOrderRepository { return &orderRepo{s} }

// Receipts devuelve el repositorio de idempotencia de recepciones.
func (s *Store) Receipts() repository.ReceiptRepository { return &receiptRepo{s} }

// Items devuelve el repositorio de artículos.
func (s *Store) Items() repository.ItemRepository { return &itemRepo{s} }

// Warehouses devuelve el repositorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s} }

type stockRepo struct{ s *Store }

func (r *stockRepo) Get(itemID, warehouseID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if b, ok := r.s.balances[balanceKey(itemID, warehouseID)]; ok {
		out := b
		return &out, nil
	}
	return &entity.StockBalance{ItemID: itemID, WarehouseID: warehouseID}, nil
}

func (r *stockRepo) GetForUpdate(itemID, warehouseID string) (*entity.StockBalance, error) {
	// El txMu del Store ya serializa; no hay bloqueo por fila en memoria.
	return r.Get(itemID, warehouseID)
}

func (r *stockRepo) Find(itemID, warehouseID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if b, ok := r.s.balances[balanceKey(itemID, warehouseID)]; ok {
		out := b
		return &out, nil
	}
	return nil, nil
}

func (r *stockRepo) Upsert(balance *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[balanceKey(balance.ItemID, balance.WarehouseID)] = *balance
	return nil
}

func (r *stockRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockBalance
	for _, b := range r.s.balances {
		if b.WarehouseID == warehouseID {
			out := b
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return paginate(list, limit, offset), nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.movements {
		if r.s.movements[i].ID == id {
			out := r.s.movements[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Movement
	for i := len(r.s.movements) - 1; i >= 0; i-- { // más reciente primero
		m := r.s.movements[i]
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.WarehouseID != "" && m.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Reference != "" && m.Reference != filter.Reference {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		out := m
		list = append(list, &out)
	}
	return paginate(list, filter.Limit, filter.Offset), nil
}

func (r *movementRepo) ListByKey(itemID, warehouseID string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Movement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if m.ItemID == itemID && m.WarehouseID == warehouseID {
			out := m
			list = append(list, &out)
		}
	}
	return list, nil
}

type reservationRepo struct{ s *Store }

func (r *reservationRepo) Create(reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r *reservationRepo) GetByID(id string) (*entity.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if res, ok := r.s.reservations[id]; ok {
		out := res
		return &out, nil
	}
	return nil, nil
}

func (r *reservationRepo) GetForUpdate(id string) (*entity.Reservation, error) {
	return r.GetByID(id)
}

func (r *reservationRepo) Update(reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r *reservationRepo) ListExpiredActive(now time.Time, limit int) ([]*entity.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.State == entity.ReservationStateActivo && res.IsExpired(now) {
			out := res
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(*list[j].ExpiresAt) })
	return paginate(list, limit, 0), nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(order *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if o, ok := r.s.orders[id]; ok {
		out := cloneOrder(o)
		return &out, nil
	}
	return nil, nil
}

func (r *orderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *orderRepo) Update(order *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

type receiptRepo struct{ s *Store }

func (r *receiptRepo) Get(orderID, idempotencyKey string) (*entity.ReceiptRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.receipts[receiptKey(orderID, idempotencyKey)]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (r *receiptRepo) Create(record *entity.ReceiptRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.receipts[receiptKey(record.OrderID, record.IdempotencyKey)] = *record
	return nil
}

type itemRepo struct{ s *Store }

func (r *itemRepo) GetByID(id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if it, ok := r.s.items[id]; ok {
		out := it
		return &out, nil
	}
	return nil, nil
}

func (r *itemRepo) List(limit, offset int) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Item
	for _, it := range r.s.items {
		out := it
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, limit, offset), nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if wh, ok := r.s.warehouses[id]; ok {
		out := wh
		return &out, nil
	}
	return nil, nil
}

func (r *warehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Warehouse
	for _, wh := range r.s.warehouses {
		out := wh
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, limit, offset), nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
