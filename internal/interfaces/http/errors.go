package http

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
)

var validate = validator.New()

// bind parsea el cuerpo JSON (si viene) y valida los tags `validate`.
// Los errores se devuelven envueltos en domain.ErrInvalidInput.
func bind(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
		}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// writeError traduce los errores del motor a la respuesta HTTP.
//
//	CONFIGURATION → 422 (con la etiqueta del rol faltante)
//	VALIDATION    → 400
//	STATE         → 409 (OBLIGATION_NOT_FOUND → 404)
//	ErrNotFound → 404, ErrInvalidInput → 400, lock vencido → 503, resto → 500
func writeError(c *fiber.Ctx, err error) error {
	var te *domain.TaxError
	if errors.As(err, &te) {
		status := fiber.StatusInternalServerError
		switch te.Kind {
		case domain.KindConfiguration:
			status = fiber.StatusUnprocessableEntity
		case domain.KindValidation:
			status = fiber.StatusBadRequest
		case domain.KindState:
			status = fiber.StatusConflict
			if te.Code == domain.ErrObligationNotFound.Code {
				status = fiber.StatusNotFound
			}
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: te.Code, Message: te.Message, Label: te.Label})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cierre no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: "la obligación está siendo liquidada, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
