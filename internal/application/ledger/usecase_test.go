package ledger

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/warehouse"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional (snapshot + restore)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	materials map[string]*entity.Material
	movements map[string]*entity.StockMovement
	levels    map[string]decimal.Decimal // "materialID|locationID"
}

func newMemStore() *memStore {
	return &memStore{
		materials: make(map[string]*entity.Material),
		movements: make(map[string]*entity.StockMovement),
		levels:    make(map[string]decimal.Decimal),
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.materials {
		cp := *v
		c.materials[k] = &cp
	}
	for k, v := range s.movements {
		cp := *v
		c.movements[k] = &cp
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.materials = from.materials
	s.movements = from.movements
	s.levels = from.levels
}

func levelKey(materialID, locationID string) string { return materialID + "|" + locationID }

type fakeMaterialRepo struct{ s *memStore }

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
func (r *fakeMaterialRepo) List(limit, offset int) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, m := range r.s.materials {
		out = append(out, m)
	}
	return out, nil
}
func (r *fakeMaterialRepo) Delete(id string) (int64, error) {
	if _, ok := r.s.materials[id]; !ok {
		return 0, nil
	}
	delete(r.s.materials, id)
	return 1, nil
}

type fakeMovementRepo struct{ s *memStore }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}
func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	return r.s.movements[id], nil
}
func (r *fakeMovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	return r.s.movements[id], nil
}
func (r *fakeMovementRepo) Update(m *entity.StockMovement) error {
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}
func (r *fakeMovementRepo) Delete(id string) (int64, error) {
	if _, ok := r.s.movements[id]; !ok {
		return 0, nil
	}
	delete(r.s.movements, id)
	return 1, nil
}
func (r *fakeMovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.MaterialID == materialID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovedAt.After(out[j].MovedAt) })
	return out, nil
}
func (r *fakeMovementRepo) CountByMaterial(materialID string) (int, error) {
	n := 0
	for _, m := range r.s.movements {
		if m.MaterialID == materialID {
			n++
		}
	}
	return n, nil
}
func (r *fakeMovementRepo) SumDeltas(materialID string, locationID *string) (decimal.Decimal, error) {
	loc := ""
	if locationID != nil {
		loc = *locationID
	}
	var ms []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.MaterialID == materialID {
			ms = append(ms, m)
		}
	}
	return warehouse.SumDeltas(ms, loc), nil
}

type fakeLevelRepo struct {
	s         *memStore
	failApply bool
}

func (r *fakeLevelRepo) Get(materialID, locationID string) (*entity.StockLevel, error) {
	qty, ok := r.s.levels[levelKey(materialID, locationID)]
	if !ok {
		return nil, nil
	}
	return &entity.StockLevel{MaterialID: materialID, LocationID: locationID, Quantity: qty}, nil
}
func (r *fakeLevelRepo) ListByMaterial(materialID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for k, qty := range r.s.levels {
		if len(k) > len(materialID) && k[:len(materialID)] == materialID {
			out = append(out, &entity.StockLevel{MaterialID: materialID, LocationID: k[len(materialID)+1:], Quantity: qty})
		}
	}
	return out, nil
}
func (r *fakeLevelRepo) ApplyDelta(materialID, locationID string, delta decimal.Decimal) error {
	if r.failApply {
		return errors.New("fallo simulado de proyección")
	}
	k := levelKey(materialID, locationID)
	r.s.levels[k] = r.s.levels[k].Add(delta)
	return nil
}
func (r *fakeLevelRepo) Recompute(materialID, locationID string) error {
	var ms []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.MaterialID == materialID {
			ms = append(ms, m)
		}
	}
	r.s.levels[levelKey(materialID, locationID)] = warehouse.SumDeltas(ms, locationID)
	return nil
}
func (r *fakeLevelRepo) RecomputeMaterial(materialID string) error {
	for k := range r.s.levels {
		if len(k) > len(materialID) && k[:len(materialID)] == materialID {
			delete(r.s.levels, k)
		}
	}
	var ms []*entity.StockMovement
	locs := make(map[string]bool)
	for _, m := range r.s.movements {
		if m.MaterialID != materialID {
			continue
		}
		ms = append(ms, m)
		if m.SourceLocationID != nil {
			locs[*m.SourceLocationID] = true
		}
		if m.DestLocationID != nil {
			locs[*m.DestLocationID] = true
		}
	}
	for loc := range locs {
		r.s.levels[levelKey(materialID, loc)] = warehouse.SumDeltas(ms, loc)
	}
	return nil
}
func (r *fakeLevelRepo) DeleteByMaterial(materialID string) error {
	for k := range r.s.levels {
		if len(k) > len(materialID) && k[:len(materialID)] == materialID {
			delete(r.s.levels, k)
		}
	}
	return nil
}

// fakeTxRunner emula la atomicidad: si fn falla, restaura el snapshot previo.
type fakeTxRunner struct {
	s         *memStore
	failApply bool
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(&fakeMovementRepo{s: r.s}, &fakeLevelRepo{s: r.s, failApply: r.failApply})
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func strPtr(s string) *string      { return &s }

func newTestUseCase(t *testing.T) (*MovementLedgerUseCase, *memStore) {
	t.Helper()
	s := newMemStore()
	s.materials["mat-1"] = &entity.Material{
		ID:          "mat-1",
		Name:        "Tablero MDF 18mm",
		MinStock:    dec("10"),
		CurrentCost: dec("25.50"),
		Active:      true,
	}
	uc := NewMovementLedgerUseCase(&fakeTxRunner{s: s}, &fakeMaterialRepo{s: s}, &fakeMovementRepo{s: s})
	return uc, s
}

func record(t *testing.T, uc *MovementLedgerUseCase, in RecordMovementInput) string {
	t.Helper()
	id, err := uc.Record(context.Background(), in)
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Record
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_ReceiptActualizaStockDelDestino(t *testing.T) {
	uc, s := newTestUseCase(t)

	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})

	mov := s.movements[id]
	require.NotNil(t, mov)
	assert.True(t, mov.Quantity.Equal(dec("40")), "RECEIPT almacena delta positivo")
	assert.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("40")))
}

func TestRecord_IssueAlmacenaDeltaNegativo(t *testing.T) {
	uc, s := newTestUseCase(t)

	record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeISSUE,
		Quantity: dec("15"), SourceLocationID: strPtr("bodega"),
	})

	mov := s.movements[id]
	assert.True(t, mov.Quantity.Equal(dec("-15")), "ISSUE almacena delta negativo")
	assert.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("25")))
}

func TestRecord_TransferMueveStockEntreUbicaciones(t *testing.T) {
	uc, s := newTestUseCase(t)

	record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("30"), DestLocationID: strPtr("bodega"),
	})
	record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeTRANSFER,
		Quantity: dec("12"), SourceLocationID: strPtr("bodega"), DestLocationID: strPtr("taller"),
	})

	assert.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("18")))
	assert.True(t, s.levels[levelKey("mat-1", "taller")].Equal(dec("12")))

	// El agregado global no cambia: un traslado no crea ni destruye stock.
	global, err := (&fakeMovementRepo{s: s}).SumDeltas("mat-1", nil)
	require.NoError(t, err)
	assert.True(t, global.Equal(dec("30")))
}

func TestRecord_InvarianteTipoUbicaciones(t *testing.T) {
	uc, _ := newTestUseCase(t)

	cases := []struct {
		name  string
		input RecordMovementInput
	}{
		{"RECEIPT con origen", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
			Quantity: dec("5"), SourceLocationID: strPtr("bodega"), DestLocationID: strPtr("taller"),
		}},
		{"RECEIPT sin destino", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT, Quantity: dec("5"),
		}},
		{"ISSUE con destino", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeISSUE,
			Quantity: dec("5"), SourceLocationID: strPtr("bodega"), DestLocationID: strPtr("taller"),
		}},
		{"TRANSFER sin destino", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeTRANSFER,
			Quantity: dec("5"), SourceLocationID: strPtr("bodega"),
		}},
		{"TRANSFER origen igual a destino", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeTRANSFER,
			Quantity: dec("5"), SourceLocationID: strPtr("bodega"), DestLocationID: strPtr("bodega"),
		}},
		{"tipo desconocido", RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: "MERGE", Quantity: dec("5"),
			DestLocationID: strPtr("bodega"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Record(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRecord_CantidadNoPositiva(t *testing.T) {
	uc, _ := newTestUseCase(t)
	for _, q := range []string{"0", "-3"} {
		_, err := uc.Record(context.Background(), RecordMovementInput{
			UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
			Quantity: dec(q), DestLocationID: strPtr("bodega"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestRecord_SinSesionRechazado(t *testing.T) {
	uc, s := newTestUseCase(t)
	_, err := uc.Record(context.Background(), RecordMovementInput{
		UserID: "", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("5"), DestLocationID: strPtr("bodega"),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, s.movements, "sin sesión no debe haber mutación alguna")
}

func TestRecord_MaterialInexistente(t *testing.T) {
	uc, _ := newTestUseCase(t)
	_, err := uc.Record(context.Background(), RecordMovementInput{
		UserID: "u-1", MaterialID: "no-existe", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("5"), DestLocationID: strPtr("bodega"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecord_FalloDeProyeccionRevierteTodo(t *testing.T) {
	s := newMemStore()
	s.materials["mat-1"] = &entity.Material{ID: "mat-1", Name: "Tablero", CurrentCost: dec("10")}
	uc := NewMovementLedgerUseCase(&fakeTxRunner{s: s, failApply: true}, &fakeMaterialRepo{s: s}, &fakeMovementRepo{s: s})

	_, err := uc.Record(context.Background(), RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("5"), DestLocationID: strPtr("bodega"),
	})

	require.Error(t, err)
	assert.Empty(t, s.movements, "el movimiento no debe quedar aplicado si la proyección falla")
	assert.Empty(t, s.levels)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Amend / Remove
// ──────────────────────────────────────────────────────────────────────────────

func TestAmend_RecomputaLaProyeccion(t *testing.T) {
	uc, s := newTestUseCase(t)
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})

	q := dec("25")
	err := uc.Amend(context.Background(), "u-1", id, AmendMovementInput{Quantity: &q})
	require.NoError(t, err)

	assert.True(t, s.movements[id].Quantity.Equal(dec("25")))
	assert.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("25")),
		"la corrección debe re-derivar el stock, no sumarse al delta viejo")
}

func TestAmend_CambioDeUbicacionRecomputaAmbosPares(t *testing.T) {
	uc, s := newTestUseCase(t)
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})

	err := uc.Amend(context.Background(), "u-1", id, AmendMovementInput{DestLocationID: strPtr("taller")})
	require.NoError(t, err)

	assert.True(t, s.levels[levelKey("mat-1", "bodega")].IsZero(),
		"la ubicación vieja queda sin stock tras mover el movimiento")
	assert.True(t, s.levels[levelKey("mat-1", "taller")].Equal(dec("40")))
}

func TestAmend_UbicacionesInvalidasRechazado(t *testing.T) {
	uc, s := newTestUseCase(t)
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})

	// RECEIPT no admite ubicación de origen.
	err := uc.Amend(context.Background(), "u-1", id, AmendMovementInput{SourceLocationID: strPtr("taller")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, s.movements[id].Quantity.Equal(dec("40")), "el movimiento no debe cambiar")
	assert.Nil(t, s.movements[id].SourceLocationID)
}

func TestAmend_MovimientoInexistente(t *testing.T) {
	uc, _ := newTestUseCase(t)
	q := dec("1")
	err := uc.Amend(context.Background(), "u-1", "no-existe", AmendMovementInput{Quantity: &q})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove_EliminaYRecomputa(t *testing.T) {
	uc, s := newTestUseCase(t)
	record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeISSUE,
		Quantity: dec("10"), SourceLocationID: strPtr("bodega"),
	})
	require.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("30")))

	require.NoError(t, uc.Remove(context.Background(), "u-1", id))
	assert.True(t, s.levels[levelKey("mat-1", "bodega")].Equal(dec("40")),
		"eliminar el ISSUE devuelve el stock derivado a su valor previo")
}

func TestRemove_ReintentoTrasExitoDevuelveNotFound(t *testing.T) {
	uc, s := newTestUseCase(t)
	id := record(t, uc, RecordMovementInput{
		UserID: "u-1", MaterialID: "mat-1", Type: entity.MovementTypeRECEIPT,
		Quantity: dec("40"), DestLocationID: strPtr("bodega"),
	})

	require.NoError(t, uc.Remove(context.Background(), "u-1", id))
	levels := s.snapshot().levels

	// Segundo intento (retry tras éxito): sin efectos adicionales.
	err := uc.Remove(context.Background(), "u-1", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, levels, s.levels, "el retry no debe alterar el stock derivado")
}

func TestListByMaterial_MaterialInexistente(t *testing.T) {
	uc, _ := newTestUseCase(t)
	_, err := uc.ListByMaterial(context.Background(), "no-existe", nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
