package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	Closures    ClosureService
	Reports     CertificateService
	Entries     EntryService
	Settlements SettlementService
	Obligations ObligationLister
	Mappings    MappingService
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", App: deps.AppName})
	})

	// Todas las rutas de /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleContador, jwt.RoleConsulta)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleContador)
	admins := RequireRole(jwt.RoleAdmin)

	closureHandler := NewTaxClosureHandler(deps.Closures, deps.Reports)
	entryHandler := NewTaxEntryHandler(deps.Entries)
	settlementHandler := NewTaxSettlementHandler(deps.Settlements, deps.Obligations)
	mappingHandler := NewAccountMappingHandler(deps.Mappings)

	// Cierre del período
	closures := api.Group("/tax-closures")
	closures.Get("/:month", readers, closureHandler.Get)
	closures.Patch("/:month", writers, closureHandler.Update)
	closures.Post("/:month/refresh", writers, closureHandler.Refresh)
	closures.Post("/:month/close", admins, closureHandler.Close)
	closures.Post("/:month/unlock", admins, closureHandler.Unlock)
	closures.Get("/:month/certificate", readers, closureHandler.Certificate)

	// Asientos de determinación
	closures.Post("/:month/entries/:tax/preview", writers, entryHandler.Preview)
	closures.Post("/:month/entries/:tax", writers, entryHandler.Save)

	// Liquidación: pagos y cobros
	closures.Get("/:month/settlements", readers, settlementHandler.ListSettlements)
	closures.Post("/:month/settlements/:id/preview", writers, settlementHandler.Preview)
	closures.Post("/:month/settlements/:id", writers, settlementHandler.Register)

	api.Get("/tax-obligations", readers, settlementHandler.ListObligations)

	// Configuración de cuentas
	mappings := api.Group("/account-mappings")
	mappings.Get("/", readers, mappingHandler.List)
	mappings.Put("/:role", admins, mappingHandler.Set)
}
