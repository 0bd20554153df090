package service

import "errors"

// Taxonomia de errores del motor. QuotaExceeded y FeatureLocked son resultados
// esperados de cara al usuario, no se loguean como errores.
var (
	ErrValidation       = errors.New("validation failed")
	ErrQuotaExceeded    = errors.New("daily message quota exceeded")
	ErrFeatureLocked    = errors.New("feature locked for current plan")
	ErrStoreUnavailable = errors.New("store unavailable")
)
