package taxes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
	"github.com/samber/lo"
)

// EntryUseCase asientos de determinación por impuesto y período. Cada asiento se identifica
// por (impuesto, período, régimen): volver a guardarlo lo actualiza en lugar de duplicarlo.
type EntryUseCase struct {
	txRunner      TxRunner
	closureRepo   repository.TaxClosureRepository
	journalRepo   repository.JournalRepository
	accountRepo   repository.AccountRepository
	mappingRepo   repository.AccountMappingRepository
	totals        TotalsProvider
	policy        tax.Policy
	clock         Clock
	defaultRegime entity.Regime
	log           *logger.Logger
}

// NewEntryUseCase construye el caso de uso.
func NewEntryUseCase(
	txRunner TxRunner,
	closureRepo repository.TaxClosureRepository,
	journalRepo repository.JournalRepository,
	accountRepo repository.AccountRepository,
	mappingRepo repository.AccountMappingRepository,
	totals TotalsProvider,
	policy tax.Policy,
	clock Clock,
	defaultRegime entity.Regime,
	log *logger.Logger,
) *EntryUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if !defaultRegime.IsValid() {
		defaultRegime = entity.RegimeRI
	}
	return &EntryUseCase{
		txRunner:      txRunner,
		closureRepo:   closureRepo,
		journalRepo:   journalRepo,
		accountRepo:   accountRepo,
		mappingRepo:   mappingRepo,
		totals:        totals,
		policy:        policy,
		clock:         clock,
		defaultRegime: defaultRegime,
		log:           orNop(log),
	}
}

// BuildTaxEntryPreview arma el asiento de determinación sin persistirlo.
func (uc *EntryUseCase) BuildTaxEntryPreview(ctx context.Context, month, rawTax string, in dto.EntryPreviewRequest) (*dto.EntryPreviewResponse, error) {
	c, taxType, err := uc.prepare(ctx, month, rawTax, in.Regime)
	if err != nil {
		return nil, err
	}
	r, lines, err := uc.buildLines(ctx, c, taxType, in.AccountOverrides)
	if err != nil {
		return nil, err
	}
	entry := uc.newEntry(c, taxType, lines, nil, "")
	return toEntryPreview(r, c, taxType, entry), nil
}

// SaveTaxEntryFromPreview guarda el asiento de determinación (las líneas de la vista previa o,
// si no vienen, las armadas con los totales vigentes) y lo registra en el cierre.
func (uc *EntryUseCase) SaveTaxEntryFromPreview(ctx context.Context, month, rawTax string, in dto.SaveEntryRequest) (*dto.EntryPreviewResponse, error) {
	c, taxType, err := uc.prepare(ctx, month, rawTax, in.Regime)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, domain.ErrPeriodClosed
	}

	var (
		r     *tax.AccountResolver
		lines []entity.EntryLine
	)
	if len(in.Lines) > 0 {
		r, err = loadResolver(ctx, uc.accountRepo, uc.mappingRepo)
		if err != nil {
			return nil, err
		}
		lines = make([]entity.EntryLine, 0, len(in.Lines))
		for i, l := range in.Lines {
			if !r.IsPostable(l.AccountID) {
				return nil, fmt.Errorf("%w: renglón %d (%q)", domain.ErrInvalidAccount, i+1, l.AccountID)
			}
			lines = append(lines, entity.EntryLine{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Description: l.Description})
		}
		if err := uc.policy.ValidateBalanced(lines); err != nil {
			return nil, err
		}
	} else {
		r, lines, err = uc.buildLines(ctx, c, taxType, in.AccountOverrides)
		if err != nil {
			return nil, err
		}
	}

	entry := uc.newEntry(c, taxType, lines, in.Date, in.Memo)
	legacyID := tax.LegacySourceID(taxType, c.Month)

	err = uc.txRunner.RunTax(ctx, func(
		journalRepo repository.JournalRepository,
		_ repository.TaxObligationRepository,
		_ repository.TaxPaymentRepository,
		closureRepo repository.TaxClosureRepository,
	) error {
		existing, err := journalRepo.FindBySource(ctx, entity.SourceModuleTaxes, entry.Metadata.SourceID)
		if err != nil {
			return fmt.Errorf("buscar asiento existente: %w", err)
		}
		if existing == nil {
			// asientos anteriores a la clave actual: se migran in situ
			existing, err = journalRepo.FindBySource(ctx, entity.SourceModuleTaxes, legacyID)
			if err != nil {
				return fmt.Errorf("buscar asiento anterior: %w", err)
			}
		}
		if existing != nil {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			if err := journalRepo.Update(ctx, existing.ID, entry); err != nil {
				return fmt.Errorf("actualizar asiento: %w", err)
			}
		} else {
			entry.ID = uuid.New().String()
			if err := journalRepo.Create(ctx, entry); err != nil {
				return fmt.Errorf("crear asiento: %w", err)
			}
		}
		if err := uc.policy.RecordEntry(c, taxType, entry.ID, uc.clock.Now()); err != nil {
			return err
		}
		return closureRepo.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("period", c.Month).Str("regime", string(c.Regime)).Str("tax_type", string(taxType)).
		Str("entry_id", entry.ID).Msg("asiento de determinación guardado")
	out := toEntryPreview(r, c, taxType, entry)
	out.EntryID = entry.ID
	return out, nil
}

func (uc *EntryUseCase) prepare(ctx context.Context, month, rawTax, rawRegime string) (*entity.TaxClosePeriod, entity.TaxType, error) {
	taxType, err := parseTaxType(rawTax)
	if err != nil {
		return nil, "", err
	}
	if !tax.HasDetermination(taxType) {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrDeterminationNotApplicable, taxType)
	}
	c, err := loadClosure(ctx, uc.closureRepo, uc.clock, month, rawRegime, uc.defaultRegime, true)
	if err != nil {
		return nil, "", err
	}
	return c, taxType, nil
}

func (uc *EntryUseCase) buildLines(ctx context.Context, c *entity.TaxClosePeriod, taxType entity.TaxType, accountOverrides map[string]string) (*tax.AccountResolver, []entity.EntryLine, error) {
	pt, err := uc.totals.GetPeriodTotals(ctx, c.Month)
	if err != nil {
		return nil, nil, fmt.Errorf("totales del período: %w", err)
	}
	if !lo.Contains(tax.ApplicableTaxTypes(c.Regime, pt, c.Settings), taxType) {
		return nil, nil, fmt.Errorf("%w: %s en régimen %s", domain.ErrDeterminationNotApplicable, taxType, c.Regime)
	}
	r, err := loadResolver(ctx, uc.accountRepo, uc.mappingRepo)
	if err != nil {
		return nil, nil, err
	}
	lines, err := uc.policy.BuildDeterminationLines(r, taxType, pt, c.Overrides, accountOverrides)
	if err != nil {
		return nil, nil, err
	}
	return r, lines, nil
}

func (uc *EntryUseCase) newEntry(c *entity.TaxClosePeriod, taxType entity.TaxType, lines []entity.EntryLine, date *time.Time, memo string) *entity.JournalEntry {
	period, _ := tax.ParsePeriod(c.Month)
	d := lastDayOfMonth(period)
	if date != nil && !date.IsZero() {
		d = *date
	}
	if memo == "" {
		memo = fmt.Sprintf("Determinación %s %s", taxType.Label(), c.Month)
	}
	now := uc.clock.Now()
	return &entity.JournalEntry{
		Date:  d,
		Memo:  memo,
		Lines: lines,
		Metadata: entity.EntryMetadata{
			SourceModule: entity.SourceModuleTaxes,
			SourceID:     tax.DeterminationSourceID(taxType, c.Month, c.Regime),
			Tag:          tax.NewTag(taxType, c.Month, entity.EntryKindDetermination),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func toEntryPreview(r *tax.AccountResolver, c *entity.TaxClosePeriod, taxType entity.TaxType, e *entity.JournalEntry) *dto.EntryPreviewResponse {
	debit, credit := e.Totals()
	return &dto.EntryPreviewResponse{
		TaxType:     string(taxType),
		Period:      c.Month,
		Regime:      string(c.Regime),
		SourceID:    e.Metadata.SourceID,
		Date:        e.Date,
		Memo:        e.Memo,
		Lines:       toLineDTOs(r, e.Lines),
		TotalDebit:  debit,
		TotalCredit: credit,
	}
}
