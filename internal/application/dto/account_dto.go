package dto

// AccountRoleResponse rol contable con la cuenta que se usaría para imputarlo.
// MappedID es la asignación configurada; AccountID la cuenta resuelta (vacía si falta).
type AccountRoleResponse struct {
	Role          string `json:"role"`
	Label         string `json:"label"`
	CanonicalCode string `json:"canonical_code"`
	MappedID      string `json:"mapped_id,omitempty"`
	AccountID     string `json:"account_id,omitempty"`
	AccountCode   string `json:"account_code,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
}

// SetAccountMappingRequest cuenta a asignar a un rol.
type SetAccountMappingRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}
