package http

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
)

// SettlementService pagos y cobros de obligaciones (lo implementa *taxes.SettlementUseCase).
type SettlementService interface {
	GetObligationsByPeriod(ctx context.Context, month, regime string) ([]dto.SettlementObligationResponse, error)
	BuildTaxSettlementEntryPreview(ctx context.Context, month, settlementID string, in dto.SettlementRequest) (*dto.SettlementPreviewResponse, error)
	RegisterTaxSettlement(ctx context.Context, month, settlementID string, in dto.SettlementRequest) (*dto.SettlementResultResponse, error)
}

// ObligationLister listado de obligaciones con pagos (lo implementa *taxes.ObligationStore).
type ObligationLister interface {
	ListWithPaymentSummary(ctx context.Context, period string) ([]dto.ObligationSummaryResponse, error)
}

// TaxSettlementHandler maneja obligaciones, pagos y cobros.
type TaxSettlementHandler struct {
	uc          SettlementService
	obligations ObligationLister
}

// NewTaxSettlementHandler construye el handler.
func NewTaxSettlementHandler(uc SettlementService, obligations ObligationLister) *TaxSettlementHandler {
	return &TaxSettlementHandler{uc: uc, obligations: obligations}
}

// ListObligations godoc
// @Summary      Obligaciones registradas con sus pagos
// @Description  El estado se recalcula desde los pagos; los pagos cuyo asiento fue borrado se depuran.
// @Tags         tax-obligations
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "Período YYYY-MM (vacío = todos)"
// @Success      200  {array}   dto.ObligationSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tax-obligations [get]
func (h *TaxSettlementHandler) ListObligations(c *fiber.Ctx) error {
	out, err := h.obligations.ListWithPaymentSummary(c.Context(), c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListSettlements godoc
// @Summary      Vista de liquidación del período
// @Description  Una fila por obligación a pagar y por saldo a favor, con su historial de pagos.
// @Tags         tax-settlements
// @Security     Bearer
// @Produce      json
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT"
// @Success      200  {array}   dto.SettlementObligationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/settlements [get]
func (h *TaxSettlementHandler) ListSettlements(c *fiber.Ctx) error {
	out, err := h.uc.GetObligationsByPeriod(c.Context(), c.Params("month"), c.Query("regime"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Preview godoc
// @Summary      Vista previa del asiento de pago o cobro
// @Tags         tax-settlements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        month  path  string                 true  "Período YYYY-MM"
// @Param        id     path  string                 true  "ID de la fila de liquidación o de la obligación"
// @Param        body   body  dto.SettlementRequest  true  "Pago"
// @Success      200  {object}  dto.SettlementPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/settlements/{id}/preview [post]
func (h *TaxSettlementHandler) Preview(c *fiber.Ctx) error {
	var in dto.SettlementRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.BuildTaxSettlementEntryPreview(c.Context(), c.Params("month"), settlementID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Register godoc
// @Summary      Registrar un pago o cobro
// @Description  Graba asiento, pago y estado de la obligación en una sola transacción.
// @Tags         tax-settlements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        month  path  string                 true  "Período YYYY-MM"
// @Param        id     path  string                 true  "ID de la fila de liquidación o de la obligación"
// @Param        body   body  dto.SettlementRequest  true  "Pago"
// @Success      201  {object}  dto.SettlementResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/settlements/{id} [post]
func (h *TaxSettlementHandler) Register(c *fiber.Ctx) error {
	var in dto.SettlementRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RegisterTaxSettlement(c.Context(), c.Params("month"), settlementID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// settlementID el id puede ser la clave de la obligación ("IVA|2024-05|"), que llega escapada.
func settlementID(c *fiber.Ctx) string {
	raw := c.Params("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
