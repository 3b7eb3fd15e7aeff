package deletion

import "fmt"

// Pasos de la cascada, en su orden fijo de ejecución.
const (
	StepCancelEstimates   = "cancel_estimates"
	StepClearReservations = "clear_reservations"
	StepArchiveMovements  = "archive_movements"
	StepVerify            = "verify"
	StepDeleteMaterial    = "delete_material"
)

// CascadeError envuelve el error de un paso de la cascada con el paso que falló,
// para que la UI pueda re-presentar el informe de dependencias en lugar de un
// fallo genérico.
type CascadeError struct {
	Step string
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascada: paso %s: %v", e.Step, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
