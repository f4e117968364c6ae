package taxes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
	"github.com/samber/lo"
)

// ClosureUseCase ciclo de vida del cierre mensual: creación, checklist, ajustes, refresco
// explícito de totales, cierre y reapertura.
type ClosureUseCase struct {
	closureRepo   repository.TaxClosureRepository
	journalRepo   repository.JournalRepository
	totals        TotalsProvider
	store         *ObligationStore
	policy        tax.Policy
	clock         Clock
	defaultRegime entity.Regime
	log           *logger.Logger
}

// NewClosureUseCase construye el caso de uso.
func NewClosureUseCase(
	closureRepo repository.TaxClosureRepository,
	journalRepo repository.JournalRepository,
	totals TotalsProvider,
	store *ObligationStore,
	policy tax.Policy,
	clock Clock,
	defaultRegime entity.Regime,
	log *logger.Logger,
) *ClosureUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if !defaultRegime.IsValid() {
		defaultRegime = entity.RegimeRI
	}
	return &ClosureUseCase{
		closureRepo:   closureRepo,
		journalRepo:   journalRepo,
		totals:        totals,
		store:         store,
		policy:        policy,
		clock:         clock,
		defaultRegime: defaultRegime,
		log:           orNop(log),
	}
}

// GetTaxClosure devuelve el cierre sin crearlo; domain.ErrNotFound si no existe.
func (uc *ClosureUseCase) GetTaxClosure(ctx context.Context, month, regime string) (*dto.ClosureResponse, error) {
	c, err := uc.load(ctx, month, regime, false)
	if err != nil {
		return nil, err
	}
	out := toClosureResponse(c)
	return &out, nil
}

// EnsureTaxClosure devuelve el cierre del período, creándolo abierto si no existe.
func (uc *ClosureUseCase) EnsureTaxClosure(ctx context.Context, month, regime string) (*dto.ClosureResponse, error) {
	c, err := uc.load(ctx, month, regime, true)
	if err != nil {
		return nil, err
	}
	out := toClosureResponse(c)
	return &out, nil
}

// UpdateTaxClosure aplica cambios parciales. Con el período cerrado devuelve el documento sin
// cambios y applied=false. Si cambian ajustes, correcciones u opciones, las obligaciones se
// vuelven a sincronizar con las cifras del cierre.
func (uc *ClosureUseCase) UpdateTaxClosure(ctx context.Context, month string, in dto.UpdateClosureRequest) (*dto.UpdateClosureResponse, error) {
	c, err := uc.load(ctx, month, in.Regime, true)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		uc.log.Info().Str("period", c.Month).Str("regime", string(c.Regime)).Msg("cierre bloqueado: actualización ignorada")
		return &dto.UpdateClosureResponse{Applied: false, Closure: toClosureResponse(c)}, nil
	}
	update, err := toClosureUpdate(c, in)
	if err != nil {
		return nil, err
	}
	applied, err := tax.ApplyUpdate(c, update, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return &dto.UpdateClosureResponse{Applied: false, Closure: toClosureResponse(c)}, nil
	}
	if err := uc.closureRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("guardar cierre: %w", err)
	}
	if len(update.Overrides) > 0 || update.Corrections != nil || update.Settings != nil {
		if err := uc.store.SyncFromClosure(ctx, c); err != nil {
			return nil, err
		}
	}
	return &dto.UpdateClosureResponse{Applied: true, Closure: toClosureResponse(c)}, nil
}

// Refresh recalcula totales, asientos vigentes y obligaciones del período. No hace nada si
// el período está cerrado.
func (uc *ClosureUseCase) Refresh(ctx context.Context, month, regime string) (*dto.UpdateClosureResponse, error) {
	c, err := uc.load(ctx, month, regime, true)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return &dto.UpdateClosureResponse{Applied: false, Closure: toClosureResponse(c)}, nil
	}
	pt, err := uc.totals.GetPeriodTotals(ctx, c.Month)
	if err != nil {
		return nil, fmt.Errorf("totales del período: %w", err)
	}
	existing := map[string]bool{}
	if ids := lo.Values(c.EntryIDs); len(ids) > 0 {
		entries, err := uc.journalRepo.BulkGet(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("asientos del cierre: %w", err)
		}
		for id := range entries {
			existing[id] = true
		}
	}
	now := uc.clock.Now()
	uc.policy.Refresh(c, tax.ComputeTotals(c.Regime, pt, c.Settings), tax.IIBBBreakdown(pt), existing, now)
	if err := uc.closureRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("guardar cierre: %w", err)
	}
	if err := uc.store.SyncFromClosure(ctx, c); err != nil {
		return nil, err
	}
	uc.log.Info().Str("period", c.Month).Str("regime", string(c.Regime)).Msg("cierre refrescado")
	return &dto.UpdateClosureResponse{Applied: true, Closure: toClosureResponse(c)}, nil
}

// ClosePeriod cierra el período y congela las cifras presentadas. Las obligaciones quedan
// sincronizadas con esas mismas cifras antes de guardar la foto.
func (uc *ClosureUseCase) ClosePeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error) {
	c, err := uc.load(ctx, month, regime, true)
	if err != nil {
		return nil, err
	}
	if err := tax.Close(c, userID, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.store.SyncFromClosure(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.closureRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("guardar cierre: %w", err)
	}
	uc.log.Info().Str("period", c.Month).Str("regime", string(c.Regime)).Str("user_id", userID).Msg("período cerrado")
	out := toClosureResponse(c)
	return &out, nil
}

// UnlockPeriod reabre un período cerrado; la foto de cierre se conserva.
func (uc *ClosureUseCase) UnlockPeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error) {
	c, err := uc.load(ctx, month, regime, false)
	if err != nil {
		return nil, err
	}
	if err := tax.Unlock(c, userID, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.closureRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("guardar cierre: %w", err)
	}
	uc.log.Info().Str("period", c.Month).Str("regime", string(c.Regime)).Str("user_id", userID).Msg("período reabierto")
	out := toClosureResponse(c)
	return &out, nil
}

func (uc *ClosureUseCase) load(ctx context.Context, month, rawRegime string, create bool) (*entity.TaxClosePeriod, error) {
	return loadClosure(ctx, uc.closureRepo, uc.clock, month, rawRegime, uc.defaultRegime, create)
}

// loadClosure obtiene el cierre por (mes, régimen); con create lo crea abierto si falta.
func loadClosure(
	ctx context.Context,
	repo repository.TaxClosureRepository,
	clock Clock,
	month, rawRegime string,
	defaultRegime entity.Regime,
	create bool,
) (*entity.TaxClosePeriod, error) {
	if _, err := parseMonth(month); err != nil {
		return nil, err
	}
	regime, err := parseRegime(rawRegime, defaultRegime)
	if err != nil {
		return nil, err
	}
	c, err := repo.Get(ctx, month, regime)
	if err != nil {
		return nil, fmt.Errorf("obtener cierre: %w", err)
	}
	if c != nil {
		return c, nil
	}
	if !create {
		return nil, domain.ErrNotFound
	}
	c = tax.NewClosure(uuid.New().String(), month, regime, clock.Now())
	if err := repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("crear cierre: %w", err)
	}
	return c, nil
}

func toClosureUpdate(c *entity.TaxClosePeriod, in dto.UpdateClosureRequest) (tax.ClosureUpdate, error) {
	u := tax.ClosureUpdate{
		OperationsReconciled: in.OperationsReconciled,
		ReconciliationDone:   in.ReconciliationDone,
	}
	if len(in.Overrides) > 0 {
		u.Overrides = make(map[entity.TaxType]entity.TotalOverride, len(in.Overrides))
		for raw, o := range in.Overrides {
			t, err := parseTaxType(raw)
			if err != nil {
				return u, err
			}
			u.Overrides[t] = entity.TotalOverride{Mode: entity.OverrideMode(o.Mode), Amount: o.Amount}
		}
	}
	if in.Corrections != nil {
		corrections := make([]entity.ManualCorrection, 0, len(in.Corrections))
		for _, corr := range in.Corrections {
			t, err := parseTaxType(corr.TaxType)
			if err != nil {
				return u, err
			}
			id := corr.ID
			if id == "" {
				id = uuid.New().String()
			}
			corrections = append(corrections, entity.ManualCorrection{
				ID: id, TaxType: t, Jurisdiction: corr.Jurisdiction, Amount: corr.Amount, Description: corr.Description,
			})
		}
		u.Corrections = &corrections
	}
	if in.AutonomosEnabled != nil {
		settings := c.Settings
		settings.AutonomosEnabled = *in.AutonomosEnabled
		u.Settings = &settings
	}
	return u, nil
}
