package entity

import "time"

// Account cuenta del plan de cuentas. Las cuentas título (IsHeader) agrupan y no son imputables.
type Account struct {
	ID        string
	Code      string // código jerárquico, ej. 2.1.3.02
	Name      string
	IsHeader  bool
	CreatedAt time.Time
}

// Postable indica si la cuenta admite imputaciones.
func (a Account) Postable() bool { return !a.IsHeader }

// AccountMapping asignación configurada por el usuario de una cuenta a un rol semántico.
type AccountMapping struct {
	Role      string
	AccountID string
	UpdatedAt time.Time
}
