package estimate

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional (snapshot + restore)
// ──────────────────────────────────────────────────────────────────────────────

type estStore struct {
	materials    map[string]*entity.Material
	estimates    map[string]*entity.Estimate
	items        map[string]*entity.EstimateItem
	reservations map[string]*entity.Reservation
}

func newEstStore() *estStore {
	return &estStore{
		materials:    make(map[string]*entity.Material),
		estimates:    make(map[string]*entity.Estimate),
		items:        make(map[string]*entity.EstimateItem),
		reservations: make(map[string]*entity.Reservation),
	}
}

func (s *estStore) snapshot() *estStore {
	c := newEstStore()
	for k, v := range s.materials {
		cp := *v
		c.materials[k] = &cp
	}
	for k, v := range s.estimates {
		cp := *v
		c.estimates[k] = &cp
	}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.reservations {
		cp := *v
		c.reservations[k] = &cp
	}
	return c
}

func (s *estStore) restore(from *estStore) {
	s.materials = from.materials
	s.estimates = from.estimates
	s.items = from.items
	s.reservations = from.reservations
}

type fakeEstimateRepo struct{ s *estStore }

func (r *fakeEstimateRepo) Create(e *entity.Estimate) error {
	if _, ok := r.s.estimates[e.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *e
	r.s.estimates[e.ID] = &cp
	return nil
}
func (r *fakeEstimateRepo) GetByID(id string) (*entity.Estimate, error) {
	if e, ok := r.s.estimates[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}
func (r *fakeEstimateRepo) GetForUpdate(id string) (*entity.Estimate, error) { return r.GetByID(id) }
func (r *fakeEstimateRepo) UpdateStatus(id, status string) error {
	if e, ok := r.s.estimates[id]; ok {
		e.Status = status
	}
	return nil
}
func (r *fakeEstimateRepo) UpdateTotal(id string, total decimal.Decimal) error {
	if e, ok := r.s.estimates[id]; ok {
		e.TotalCost = total
	}
	return nil
}
func (r *fakeEstimateRepo) ListByMaterial(materialID string) ([]*entity.Estimate, error) {
	seen := make(map[string]bool)
	var out []*entity.Estimate
	for _, it := range r.s.items {
		if it.MaterialID == materialID && !seen[it.EstimateID] {
			seen[it.EstimateID] = true
			out = append(out, r.s.estimates[it.EstimateID])
		}
	}
	return out, nil
}
func (r *fakeEstimateRepo) ListApprovedByMaterial(materialID string) ([]*entity.Estimate, error) {
	all, _ := r.ListByMaterial(materialID)
	var out []*entity.Estimate
	for _, e := range all {
		if e.Status == entity.EstimateStatusApproved {
			out = append(out, e)
		}
	}
	return out, nil
}
func (r *fakeEstimateRepo) CreateItem(it *entity.EstimateItem) error {
	cp := *it
	r.s.items[it.ID] = &cp
	return nil
}
func (r *fakeEstimateRepo) GetItemByID(id string) (*entity.EstimateItem, error) {
	if it, ok := r.s.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}
func (r *fakeEstimateRepo) UpdateItemQuantity(itemID string, quantity decimal.Decimal) error {
	if it, ok := r.s.items[itemID]; ok {
		it.QuantityNeeded = quantity
	}
	return nil
}
func (r *fakeEstimateRepo) DeleteItem(itemID string) (int64, error) {
	if _, ok := r.s.items[itemID]; !ok {
		return 0, nil
	}
	delete(r.s.items, itemID)
	return 1, nil
}
func (r *fakeEstimateRepo) ListItems(estimateID string) ([]*entity.EstimateItem, error) {
	var out []*entity.EstimateItem
	for _, it := range r.s.items {
		if it.EstimateID == estimateID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
func (r *fakeEstimateRepo) SumItems(estimateID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range r.s.items {
		if it.EstimateID == estimateID {
			sum = sum.Add(it.Subtotal())
		}
	}
	return sum, nil
}

type fakeReservationRepo struct {
	s          *estStore
	failCreate bool
}

func (r *fakeReservationRepo) Create(res *entity.Reservation) error {
	if r.failCreate {
		return errors.New("fallo simulado al reservar")
	}
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}
func (r *fakeReservationRepo) ListByMaterial(materialID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.MaterialID == materialID {
			out = append(out, res)
		}
	}
	return out, nil
}
func (r *fakeReservationRepo) SumByMaterial(materialID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, res := range r.s.reservations {
		if res.MaterialID == materialID {
			sum = sum.Add(res.Quantity)
		}
	}
	return sum, nil
}
func (r *fakeReservationRepo) DeleteByEstimate(estimateID string) (int64, error) {
	var n int64
	for id, res := range r.s.reservations {
		if res.EstimateID == estimateID {
			delete(r.s.reservations, id)
			n++
		}
	}
	return n, nil
}
func (r *fakeReservationRepo) DeleteByMaterial(materialID string) (int64, error) {
	var n int64
	for id, res := range r.s.reservations {
		if res.MaterialID == materialID {
			delete(r.s.reservations, id)
			n++
		}
	}
	return n, nil
}

type fakeMaterialRepo struct{ s *estStore }

func (r *fakeMaterialRepo) Create(m *entity.Material) error { r.s.materials[m.ID] = m; return nil }
func (r *fakeMaterialRepo) GetByID(id string) (*entity.Material, error) {
	return r.s.materials[id], nil
}
func (r *fakeMaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	return r.s.materials[id], nil
}
func (r *fakeMaterialRepo) Update(m *entity.Material) error { r.s.materials[m.ID] = m; return nil }
func (r *fakeMaterialRepo) UpdateCost(id string, cost decimal.Decimal) error {
	if m, ok := r.s.materials[id]; ok {
		m.CurrentCost = cost
	}
	return nil
}
func (r *fakeMaterialRepo) List(limit, offset int) ([]*entity.Material, error) { return nil, nil }
func (r *fakeMaterialRepo) Delete(id string) (int64, error) {
	if _, ok := r.s.materials[id]; !ok {
		return 0, nil
	}
	delete(r.s.materials, id)
	return 1, nil
}

type fakeTxRunner struct {
	s          *estStore
	failCreate bool
}

func (r *fakeTxRunner) RunEstimate(ctx context.Context, fn func(
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(&fakeEstimateRepo{s: r.s}, &fakeReservationRepo{s: r.s, failCreate: r.failCreate})
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEngine(t *testing.T) (*EngineUseCase, *estStore) {
	t.Helper()
	s := newEstStore()
	s.materials["mat-1"] = &entity.Material{ID: "mat-1", Name: "Tablero MDF", CurrentCost: dec("25.50"), Active: true}
	s.materials["mat-2"] = &entity.Material{ID: "mat-2", Name: "Bisagra", CurrentCost: dec("1.20"), Active: true}
	uc := NewEngineUseCase(&fakeTxRunner{s: s}, &fakeEstimateRepo{s: s}, &fakeMaterialRepo{s: s})
	return uc, s
}

func mustCreate(t *testing.T, uc *EngineUseCase, orderID string) *entity.Estimate {
	t.Helper()
	est, err := uc.Create(context.Background(), "u-1", orderID)
	require.NoError(t, err)
	return est
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_AbreBorradorConTotalCero(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")

	assert.Equal(t, entity.EstimateStatusDraft, est.Status)
	assert.True(t, est.TotalCost.IsZero())
	assert.NotNil(t, s.estimates[est.ID])
}

func TestCreate_SinPedidoRechazado(t *testing.T) {
	uc, _ := newTestEngine(t)
	_, err := uc.Create(context.Background(), "u-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddItem_TomaSnapshotDelCostoVigente(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")

	item, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)

	assert.True(t, item.PriceAtEstimation.Equal(dec("25.50")))
	assert.True(t, s.estimates[est.ID].TotalCost.Equal(dec("102")), "4 × 25.50 = 102")
}

func TestAddItem_PrecioExplicitoPrevalece(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")

	p := dec("30")
	item, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("2"), &p)
	require.NoError(t, err)

	assert.True(t, item.PriceAtEstimation.Equal(dec("30")))
	assert.True(t, s.estimates[est.ID].TotalCost.Equal(dec("60")))
}

func TestAddItem_SnapshotInmuneACambiosDeCosto(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	item, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)

	// El costo del material sube después de crear la línea.
	s.materials["mat-1"].CurrentCost = dec("99")

	require.NoError(t, uc.UpdateItemQuantity(context.Background(), "u-1", item.ID, dec("5")))

	assert.True(t, s.items[item.ID].PriceAtEstimation.Equal(dec("25.50")),
		"el snapshot de precio nunca se actualiza retroactivamente")
	assert.True(t, s.estimates[est.ID].TotalCost.Equal(dec("127.5")), "5 × 25.50")
}

func TestAddItem_EntradasInvalidas(t *testing.T) {
	uc, _ := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")

	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("0"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.AddItem(context.Background(), "u-1", est.ID, "no-existe", dec("1"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "material desconocido")

	neg := dec("-1")
	_, err = uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("1"), &neg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio negativo")

	_, err = uc.AddItem(context.Background(), "", est.ID, "mat-1", dec("1"), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAddItem_SoloBorradoresSonEditables(t *testing.T) {
	uc, _ := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("1"), nil)
	require.NoError(t, err)
	require.NoError(t, uc.Approve(context.Background(), "u-1", est.ID))

	_, err = uc.AddItem(context.Background(), "u-1", est.ID, "mat-2", dec("1"), nil)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestRemoveItem_RecalculaYVaciaATotalCero(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	item, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)
	require.True(t, s.estimates[est.ID].TotalCost.Equal(dec("102")))

	require.NoError(t, uc.RemoveItem(context.Background(), "u-1", item.ID))

	assert.True(t, s.estimates[est.ID].TotalCost.IsZero(), "sin ítems el total vuelve a 0")
	assert.Empty(t, s.items)

	err = uc.RemoveItem(context.Background(), "u-1", item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_CreaUnaReservaPorMaterial(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-7")
	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)
	_, err = uc.AddItem(context.Background(), "u-1", est.ID, "mat-2", dec("10"), nil)
	require.NoError(t, err)

	require.NoError(t, uc.Approve(context.Background(), "u-1", est.ID))

	assert.Equal(t, entity.EstimateStatusApproved, s.estimates[est.ID].Status)
	require.Len(t, s.reservations, 2)
	for _, res := range s.reservations {
		assert.Equal(t, est.ID, res.EstimateID)
		assert.Equal(t, "order-7", res.OrderID)
	}

	sum, err := (&fakeReservationRepo{s: s}).SumByMaterial("mat-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("4")))
}

func TestApprove_AgregaItemsDelMismoMaterial(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)
	_, err = uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("6"), nil)
	require.NoError(t, err)

	require.NoError(t, uc.Approve(context.Background(), "u-1", est.ID))

	require.Len(t, s.reservations, 1, "dos ítems del mismo material producen una sola reserva")
	sum, err := (&fakeReservationRepo{s: s}).SumByMaterial("mat-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("10")))
}

func TestApprove_SoloDesdeBorrador(t *testing.T) {
	uc, _ := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	require.NoError(t, uc.Approve(context.Background(), "u-1", est.ID))

	err := uc.Approve(context.Background(), "u-1", est.ID)
	assert.ErrorIs(t, err, domain.ErrStateConflict, "APPROVED no se re-aprueba")

	err = uc.Approve(context.Background(), "u-1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_FalloAlReservarRevierteLaTransicion(t *testing.T) {
	s := newEstStore()
	s.materials["mat-1"] = &entity.Material{ID: "mat-1", CurrentCost: dec("10"), Active: true}
	uc := NewEngineUseCase(&fakeTxRunner{s: s}, &fakeEstimateRepo{s: s}, &fakeMaterialRepo{s: s})
	est := mustCreate(t, uc, "order-1")
	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)

	// A partir de aquí la creación de reservas falla.
	uc.txRunner = &fakeTxRunner{s: s, failCreate: true}

	err = uc.Approve(context.Background(), "u-1", est.ID)
	require.Error(t, err)
	assert.Equal(t, entity.EstimateStatusDraft, s.estimates[est.ID].Status,
		"la transición y las reservas se confirman o revierten juntas")
	assert.Empty(t, s.reservations)
}

func TestCancel_DesdeAprobadoLiberaReservas(t *testing.T) {
	uc, s := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	_, err := uc.AddItem(context.Background(), "u-1", est.ID, "mat-1", dec("4"), nil)
	require.NoError(t, err)
	require.NoError(t, uc.Approve(context.Background(), "u-1", est.ID))
	require.Len(t, s.reservations, 1)

	require.NoError(t, uc.Cancel(context.Background(), "u-1", est.ID))

	assert.Equal(t, entity.EstimateStatusCancelled, s.estimates[est.ID].Status)
	assert.Empty(t, s.reservations, "cancelar un APPROVED libera sus reservas")
}

func TestCancel_CanceladoEsTerminal(t *testing.T) {
	uc, _ := newTestEngine(t)
	est := mustCreate(t, uc, "order-1")
	require.NoError(t, uc.Cancel(context.Background(), "u-1", est.ID))

	err := uc.Cancel(context.Background(), "u-1", est.ID)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}
