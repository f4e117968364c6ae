package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
)

// MappingService asignación de cuentas a roles (lo implementa *taxes.MappingUseCase).
type MappingService interface {
	ListAccountRoles(ctx context.Context) ([]dto.AccountRoleResponse, error)
	SetAccountMapping(ctx context.Context, role string, in dto.SetAccountMappingRequest) (*dto.AccountRoleResponse, error)
}

// AccountMappingHandler configuración de cuentas por rol contable.
type AccountMappingHandler struct {
	uc MappingService
}

// NewAccountMappingHandler construye el handler.
func NewAccountMappingHandler(uc MappingService) *AccountMappingHandler {
	return &AccountMappingHandler{uc: uc}
}

// List godoc
// @Summary      Roles contables y cuenta resuelta para cada uno
// @Tags         account-mappings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.AccountRoleResponse
// @Router       /api/account-mappings [get]
func (h *AccountMappingHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListAccountRoles(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Set godoc
// @Summary      Asignar una cuenta a un rol
// @Tags         account-mappings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        role  path  string                        true  "Rol, ej. iva_a_pagar"
// @Param        body  body  dto.SetAccountMappingRequest  true  "Cuenta"
// @Success      200  {object}  dto.AccountRoleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/account-mappings/{role} [put]
func (h *AccountMappingHandler) Set(c *fiber.Ctx) error {
	var in dto.SetAccountMappingRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetAccountMapping(c.Context(), c.Params("role"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
