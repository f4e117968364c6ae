package taxes

import (
	"context"
	"time"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error, se hace rollback; el asiento, el pago y el estado de la obligación se
// escriben juntos o no se escribe nada.
type TxRunner interface {
	RunTax(ctx context.Context, fn func(
		journalRepo repository.JournalRepository,
		obligationRepo repository.TaxObligationRepository,
		paymentRepo repository.TaxPaymentRepository,
		closureRepo repository.TaxClosureRepository,
	) error) error
}

// TotalsProvider totales del período ya calculados desde los comprobantes (solo lectura).
type TotalsProvider interface {
	// GetPeriodTotals devuelve los totales del mes; en cero si no hay operaciones.
	GetPeriodTotals(ctx context.Context, month string) (*entity.PeriodTotals, error)
}

// SettlementLocker serializa los registros de pago por obligación.
type SettlementLocker interface {
	// Lock bloquea la clave hasta llamar a unlock. Respeta la cancelación del contexto.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ClosureCertificateData datos de la constancia de cierre.
type ClosureCertificateData struct {
	CompanyName string
	CompanyCUIT string
	Closure     *entity.TaxClosePeriod
	GeneratedAt time.Time
}

// ClosurePDFGenerator genera la constancia de cierre en PDF.
type ClosurePDFGenerator interface {
	GenerateClosureCertificate(ctx context.Context, data ClosureCertificateData) ([]byte, error)
}

// Clock fuente de la hora actual (inyectable en tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj del sistema.
type SystemClock struct{}

// Now hora actual.
func (SystemClock) Now() time.Time { return time.Now() }
