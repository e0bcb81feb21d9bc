package repository

import "errors"

var (
	// ErrNotFound indica que la cuenta solicitada no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: email o identidad de proveedor duplicada).
	ErrConflict = errors.New("conflict")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
