package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidReference     = errors.New("referencia de producto o variación inexistente")
	ErrImageUpload          = errors.New("error al subir la imagen")
	ErrSubscriptionInactive = errors.New("suscripción inactiva")
	ErrInvalidSignature     = errors.New("firma inválida")
	ErrLockNotObtained      = errors.New("otra venta de la cuenta está en curso")
)
