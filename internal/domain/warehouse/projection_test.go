package warehouse_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/warehouse"
)

func ptr(s string) *string { return &s }

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// MovementDelta — aporte por tipo y ubicación
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementDelta_PorTipoYUbicacion(t *testing.T) {
	const bodega = "loc-bodega"
	const taller = "loc-taller"

	receipt := &entity.StockMovement{Type: entity.MovementTypeRECEIPT, Quantity: d("10"), DestLocationID: ptr(bodega)}
	issue := &entity.StockMovement{Type: entity.MovementTypeISSUE, Quantity: d("-4"), SourceLocationID: ptr(bodega)}
	transfer := &entity.StockMovement{Type: entity.MovementTypeTRANSFER, Quantity: d("3"), SourceLocationID: ptr(bodega), DestLocationID: ptr(taller)}

	// Agregado global: TRANSFER neto cero, el resto con su signo.
	assert.True(t, warehouse.MovementDelta(receipt, "").Equal(d("10")))
	assert.True(t, warehouse.MovementDelta(issue, "").Equal(d("-4")))
	assert.True(t, warehouse.MovementDelta(transfer, "").IsZero())

	// Por ubicación: el TRANSFER resta en origen y suma en destino.
	assert.True(t, warehouse.MovementDelta(transfer, bodega).Equal(d("-3")))
	assert.True(t, warehouse.MovementDelta(transfer, taller).Equal(d("3")))

	// Ubicación ajena: aporte cero.
	assert.True(t, warehouse.MovementDelta(receipt, taller).IsZero())
	assert.True(t, warehouse.MovementDelta(issue, taller).IsZero())
	assert.True(t, warehouse.MovementDelta(transfer, "loc-otra").IsZero())
}

// La suma del ledger es conmutativa: cualquier orden de los mismos movimientos
// produce el mismo nivel de stock.
func TestSumDeltas_Conmutativa(t *testing.T) {
	const bodega = "loc-bodega"
	movs := []*entity.StockMovement{
		{Type: entity.MovementTypeRECEIPT, Quantity: d("100"), DestLocationID: ptr(bodega)},
		{Type: entity.MovementTypeISSUE, Quantity: d("-30"), SourceLocationID: ptr(bodega)},
		{Type: entity.MovementTypeRETURN, Quantity: d("5"), DestLocationID: ptr(bodega)},
		{Type: entity.MovementTypeADJUSTMENT, Quantity: d("-2"), SourceLocationID: ptr(bodega)},
		{Type: entity.MovementTypeTRANSFER, Quantity: d("10"), SourceLocationID: ptr(bodega), DestLocationID: ptr("loc-taller")},
	}
	expected := d("63") // 100 - 30 + 5 - 2 - 10

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]*entity.StockMovement, len(movs))
		copy(shuffled, movs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := warehouse.SumDeltas(shuffled, bodega)
		require.True(t, got.Equal(expected), "orden %d: esperado %s, obtenido %s", i, expected, got)
	}

	// Agregado global: el TRANSFER no altera el total del material.
	assert.True(t, warehouse.SumDeltas(movs, "").Equal(d("73")))
}

// ──────────────────────────────────────────────────────────────────────────────
// StatusFor — clasificación frente a umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestStatusFor_Umbrales(t *testing.T) {
	max := d("50")
	conMax := &entity.Material{MinStock: d("10"), MaxStock: &max}
	sinMax := &entity.Material{MinStock: d("10")}

	cases := []struct {
		name     string
		qty      decimal.Decimal
		material *entity.Material
		want     string
	}{
		{"bajo el mínimo", d("9.5"), conMax, entity.StockStatusLow},
		{"exactamente el mínimo", d("10"), conMax, entity.StockStatusNormal},
		{"dentro del rango", d("30"), conMax, entity.StockStatusNormal},
		{"exactamente el máximo", d("50"), conMax, entity.StockStatusNormal},
		{"sobre el máximo", d("50.01"), conMax, entity.StockStatusOver},
		{"sin máximo definido nunca es OVER", d("99999"), sinMax, entity.StockStatusNormal},
		{"sin máximo pero bajo mínimo", d("0"), sinMax, entity.StockStatusLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, warehouse.StatusFor(tc.qty, tc.material))
		})
	}
}
