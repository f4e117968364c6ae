package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
)

// EntryService asientos de determinación (lo implementa *taxes.EntryUseCase).
type EntryService interface {
	BuildTaxEntryPreview(ctx context.Context, month, rawTax string, in dto.EntryPreviewRequest) (*dto.EntryPreviewResponse, error)
	SaveTaxEntryFromPreview(ctx context.Context, month, rawTax string, in dto.SaveEntryRequest) (*dto.EntryPreviewResponse, error)
}

// TaxEntryHandler maneja la vista previa y el guardado de los asientos de determinación.
type TaxEntryHandler struct {
	uc EntryService
}

// NewTaxEntryHandler construye el handler.
func NewTaxEntryHandler(uc EntryService) *TaxEntryHandler {
	return &TaxEntryHandler{uc: uc}
}

// Preview godoc
// @Summary      Vista previa del asiento de determinación
// @Description  Arma el asiento del impuesto con los totales vigentes sin persistir nada.
// @Tags         tax-entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        month  path  string                   true   "Período YYYY-MM"
// @Param        tax    path  string                   true   "IVA | IIBB | MONOTRIBUTO | AUTONOMOS"
// @Param        body   body  dto.EntryPreviewRequest  false  "Régimen y cuentas explícitas por rol"
// @Success      200  {object}  dto.EntryPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/entries/{tax}/preview [post]
func (h *TaxEntryHandler) Preview(c *fiber.Ctx) error {
	var in dto.EntryPreviewRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.BuildTaxEntryPreview(c.Context(), c.Params("month"), c.Params("tax"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar el asiento de determinación
// @Description  Idempotente por (impuesto, período, régimen): si ya existe se actualiza en lugar de duplicarse.
// @Tags         tax-entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        month  path  string                true   "Período YYYY-MM"
// @Param        tax    path  string                true   "IVA | IIBB | MONOTRIBUTO | AUTONOMOS"
// @Param        body   body  dto.SaveEntryRequest  false  "Renglones editados (opcional)"
// @Success      200  {object}  dto.EntryPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/entries/{tax} [post]
func (h *TaxEntryHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveEntryRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SaveTaxEntryFromPreview(c.Context(), c.Params("month"), c.Params("tax"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
