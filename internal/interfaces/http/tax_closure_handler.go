package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
)

// ClosureService operaciones del cierre de período (lo implementa *taxes.ClosureUseCase).
type ClosureService interface {
	EnsureTaxClosure(ctx context.Context, month, regime string) (*dto.ClosureResponse, error)
	UpdateTaxClosure(ctx context.Context, month string, in dto.UpdateClosureRequest) (*dto.UpdateClosureResponse, error)
	Refresh(ctx context.Context, month, regime string) (*dto.UpdateClosureResponse, error)
	ClosePeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error)
	UnlockPeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error)
}

// CertificateService constancia de cierre (lo implementa *taxes.ReportUseCase).
type CertificateService interface {
	ClosureCertificate(ctx context.Context, month, regime string) ([]byte, string, error)
}

// TaxClosureHandler maneja el ciclo de vida del cierre mensual.
type TaxClosureHandler struct {
	uc     ClosureService
	report CertificateService
}

// NewTaxClosureHandler construye el handler.
func NewTaxClosureHandler(uc ClosureService, report CertificateService) *TaxClosureHandler {
	return &TaxClosureHandler{uc: uc, report: report}
}

// Get godoc
// @Summary      Obtener (o crear) el cierre del período
// @Description  Devuelve el documento de cierre del mes y régimen; si no existe lo crea abierto.
// @Tags         tax-closures
// @Security     Bearer
// @Produce      json
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT (default configurado)"
// @Success      200  {object}  dto.ClosureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month} [get]
func (h *TaxClosureHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.EnsureTaxClosure(c.Context(), c.Params("month"), c.Query("regime"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar checklist, ajustes manuales y correcciones
// @Description  Cambios parciales. Con el período cerrado no aplica nada y responde applied=false.
// @Tags         tax-closures
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        month  path  string                    true  "Período YYYY-MM"
// @Param        body   body  dto.UpdateClosureRequest  true  "Cambios"
// @Success      200  {object}  dto.UpdateClosureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month} [patch]
func (h *TaxClosureHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateClosureRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateTaxClosure(c.Context(), c.Params("month"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Recalcular totales y sincronizar obligaciones
// @Tags         tax-closures
// @Security     Bearer
// @Produce      json
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT"
// @Success      200  {object}  dto.UpdateClosureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/refresh [post]
func (h *TaxClosureHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.Context(), c.Params("month"), c.Query("regime"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar el período
// @Description  Congela las cifras presentadas y bloquea el período. Solo admin.
// @Tags         tax-closures
// @Security     Bearer
// @Produce      json
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT"
// @Success      200  {object}  dto.ClosureResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/close [post]
func (h *TaxClosureHandler) Close(c *fiber.Ctx) error {
	out, err := h.uc.ClosePeriod(c.Context(), c.Params("month"), c.Query("regime"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Unlock godoc
// @Summary      Reabrir el período
// @Description  Desbloquea el período conservando la foto de cierre. Solo admin.
// @Tags         tax-closures
// @Security     Bearer
// @Produce      json
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT"
// @Success      200  {object}  dto.ClosureResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/unlock [post]
func (h *TaxClosureHandler) Unlock(c *fiber.Ctx) error {
	out, err := h.uc.UnlockPeriod(c.Context(), c.Params("month"), c.Query("regime"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Certificate godoc
// @Summary      Constancia de cierre en PDF
// @Tags         tax-closures
// @Security     Bearer
// @Produce      application/pdf
// @Param        month   path   string  true   "Período YYYY-MM"
// @Param        regime  query  string  false  "RI | MT"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tax-closures/{month}/certificate [get]
func (h *TaxClosureHandler) Certificate(c *fiber.Ctx) error {
	pdf, filename, err := h.report.ClosureCertificate(c.Context(), c.Params("month"), c.Query("regime"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
