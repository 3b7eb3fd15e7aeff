package repository

// MovementArchiveRepository define el puerto para el archivo de historial de movimientos.
// El paso "archive data" de la cascada copia las filas vivas al archivo y las
// retira del ledger, en la misma transacción.
type MovementArchiveRepository interface {
	// ArchiveByMaterial copia los movimientos del material al archivo y elimina
	// los originales. Devuelve cuántas filas se archivaron.
	ArchiveByMaterial(materialID string) (int64, error)
	CountByMaterial(materialID string) (int, error)
}
