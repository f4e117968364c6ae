package taxes

import (
	"context"
	"fmt"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
)

// CompanyInfo datos del contribuyente para la constancia.
type CompanyInfo struct {
	Name string
	CUIT string
}

// ReportUseCase constancia de cierre en PDF de un período cerrado.
type ReportUseCase struct {
	closureRepo   repository.TaxClosureRepository
	generator     ClosurePDFGenerator
	company       CompanyInfo
	clock         Clock
	defaultRegime entity.Regime
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	closureRepo repository.TaxClosureRepository,
	generator ClosurePDFGenerator,
	company CompanyInfo,
	clock Clock,
	defaultRegime entity.Regime,
) *ReportUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if !defaultRegime.IsValid() {
		defaultRegime = entity.RegimeRI
	}
	return &ReportUseCase{
		closureRepo:   closureRepo,
		generator:     generator,
		company:       company,
		clock:         clock,
		defaultRegime: defaultRegime,
	}
}

// ClosureCertificate genera la constancia con la foto de cierre.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el cierre no existe.
//   - domain.ErrPeriodNotClosed  si el período está abierto.
//   - domain.ErrInvalidInput     si el CUIT configurado es inválido.
func (uc *ReportUseCase) ClosureCertificate(ctx context.Context, month, regime string) ([]byte, string, error) {
	c, err := loadClosure(ctx, uc.closureRepo, uc.clock, month, regime, uc.defaultRegime, false)
	if err != nil {
		return nil, "", err
	}
	if !c.IsClosed() || c.Snapshot == nil {
		return nil, "", domain.ErrPeriodNotClosed
	}
	cuit := uc.company.CUIT
	if cuit != "" {
		if err := afip.ValidateCUIT(cuit); err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		cuit = afip.FormatCUIT(cuit)
	}
	pdf, err := uc.generator.GenerateClosureCertificate(ctx, ClosureCertificateData{
		CompanyName: uc.company.Name,
		CompanyCUIT: cuit,
		Closure:     c,
		GeneratedAt: uc.clock.Now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("constancia de cierre: %w", err)
	}
	return pdf, fmt.Sprintf("cierre-%s-%s.pdf", c.Regime, c.Month), nil
}
