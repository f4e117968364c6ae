package domain

import "errors"

// Errores de dominio genéricos (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// ErrorKind clasifica los errores del motor de impuestos.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "CONFIGURATION" // falta una cuenta del plan
	KindValidation    ErrorKind = "VALIDATION"    // datos inválidos, se rechaza antes de escribir
	KindState         ErrorKind = "STATE"         // el estado actual no permite la operación
)

// TaxError error tipado del motor. Code identifica la condición; Label lleva la etiqueta
// legible del rol contable cuando el error es de configuración.
type TaxError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Label   string    `json:"label,omitempty"`
}

func (e *TaxError) Error() string {
	if e.Label != "" {
		return e.Message + ": " + e.Label
	}
	return e.Message
}

// Is compara por código, para que errors.Is(err, domain.ErrMissingAccount) funcione
// aunque el error concreto lleve otro mensaje o etiqueta.
func (e *TaxError) Is(target error) bool {
	t, ok := target.(*TaxError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewConfigurationError construye un error de configuración con la etiqueta del rol faltante.
func NewConfigurationError(code, message, label string) *TaxError {
	return &TaxError{Kind: KindConfiguration, Code: code, Message: message, Label: label}
}

// NewValidationError construye un error de validación.
func NewValidationError(code, message string) *TaxError {
	return &TaxError{Kind: KindValidation, Code: code, Message: message}
}

// NewStateError construye un error de estado.
func NewStateError(code, message string) *TaxError {
	return &TaxError{Kind: KindState, Code: code, Message: message}
}

// Errores tipados del motor de impuestos.
var (
	ErrMissingAccount = NewConfigurationError("MISSING_ACCOUNT", "no se encontró la cuenta contable requerida", "")

	ErrAmountNotPositive          = NewValidationError("AMOUNT_NOT_POSITIVE", "el importe debe ser mayor a cero")
	ErrUnbalancedEntry            = NewValidationError("UNBALANCED_ENTRY", "el asiento no balancea: debe ≠ haber")
	ErrSplitMismatch              = NewValidationError("SPLIT_MISMATCH", "la suma de las cuentas de pago no coincide con el importe")
	ErrInvalidSplitAccount        = NewValidationError("INVALID_SPLIT_ACCOUNT", "la cuenta de pago no existe o no es imputable")
	ErrInvalidAccount             = NewValidationError("INVALID_ACCOUNT", "la cuenta del renglón no existe o no es imputable")
	ErrNoSettlementSplits         = NewValidationError("NO_SETTLEMENT_SPLITS", "se requiere al menos una cuenta de pago")
	ErrReferenceRequired          = NewValidationError("REFERENCE_REQUIRED", "el cobro de un saldo a favor de IVA requiere una referencia documental")
	ErrInvalidOverride            = NewValidationError("INVALID_OVERRIDE", "ajuste manual de totales inválido")
	ErrInvalidPaymentMethod       = NewValidationError("INVALID_PAYMENT_METHOD", "medio de pago inválido")
	ErrDeterminationNotApplicable = NewValidationError("DETERMINATION_NOT_APPLICABLE", "el impuesto no lleva asiento de determinación")

	ErrExceedsRemaining    = NewStateError("EXCEEDS_REMAINING", "el importe supera el saldo pendiente de la obligación")
	ErrPeriodClosed        = NewStateError("PERIOD_CLOSED", "el período está cerrado")
	ErrPeriodAlreadyClosed = NewStateError("PERIOD_ALREADY_CLOSED", "el período ya está cerrado")
	ErrPeriodNotClosed     = NewStateError("PERIOD_NOT_CLOSED", "el período no está cerrado")
	ErrObligationNotFound  = NewStateError("OBLIGATION_NOT_FOUND", "la obligación no existe en el período")
	ErrNothingToDetermine  = NewStateError("NOTHING_TO_DETERMINE", "no hay importes para determinar en el período")
)

// MissingAccount devuelve ErrMissingAccount con la etiqueta del rol, para que el usuario cree la cuenta.
func MissingAccount(label string) *TaxError {
	return NewConfigurationError(ErrMissingAccount.Code, ErrMissingAccount.Message, label)
}
