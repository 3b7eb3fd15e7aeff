package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negocio del núcleo de almacén, expuestos en /metrics.
var (
	MovementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "warehouse",
		Name:      "movements_recorded_total",
		Help:      "Movimientos de stock registrados, por tipo.",
	}, []string{"type"})

	MovementsAmended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "warehouse",
		Name:      "movements_amended_total",
		Help:      "Correcciones in-place de movimientos (disparan recomputación de stock).",
	})

	MovementsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "warehouse",
		Name:      "movements_removed_total",
		Help:      "Movimientos eliminados del ledger.",
	})

	EstimatesApproved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "estimates",
		Name:      "approved_total",
		Help:      "Presupuestos aprobados (crean reservas).",
	})

	EstimatesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "estimates",
		Name:      "cancelled_total",
		Help:      "Presupuestos cancelados (liberan reservas).",
	})

	CascadeDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "deletion",
		Name:      "cascade_total",
		Help:      "Eliminaciones en cascada ejecutadas, por resultado.",
	}, []string{"result"})

	TransientRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomuebles",
		Subsystem: "store",
		Name:      "transient_retries_total",
		Help:      "Reintentos por fallo transitorio del almacén.",
	})
)
