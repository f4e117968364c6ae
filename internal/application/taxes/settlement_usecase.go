package taxes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SettlementUseCase conciliación de pagos contra obligaciones y registro de pagos/cobros.
type SettlementUseCase struct {
	txRunner       TxRunner
	closureRepo    repository.TaxClosureRepository
	obligationRepo repository.TaxObligationRepository
	journalRepo    repository.JournalRepository
	accountRepo    repository.AccountRepository
	mappingRepo    repository.AccountMappingRepository
	store          *ObligationStore
	locker         SettlementLocker
	lockWait       time.Duration
	policy         tax.Policy
	clock          Clock
	defaultRegime  entity.Regime
	log            *logger.Logger
}

// DefaultLockWait espera por el lock de una obligación cuando no se configura otra.
const DefaultLockWait = 10 * time.Second

// NewSettlementUseCase construye el caso de uso. Sin locker usa uno en memoria; lockWait <= 0
// usa DefaultLockWait.
func NewSettlementUseCase(
	txRunner TxRunner,
	closureRepo repository.TaxClosureRepository,
	obligationRepo repository.TaxObligationRepository,
	journalRepo repository.JournalRepository,
	accountRepo repository.AccountRepository,
	mappingRepo repository.AccountMappingRepository,
	store *ObligationStore,
	locker SettlementLocker,
	lockWait time.Duration,
	policy tax.Policy,
	clock Clock,
	defaultRegime entity.Regime,
	log *logger.Logger,
) *SettlementUseCase {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if !defaultRegime.IsValid() {
		defaultRegime = entity.RegimeRI
	}
	return &SettlementUseCase{
		txRunner:       txRunner,
		closureRepo:    closureRepo,
		obligationRepo: obligationRepo,
		journalRepo:    journalRepo,
		accountRepo:    accountRepo,
		mappingRepo:    mappingRepo,
		store:          store,
		locker:         locker,
		lockWait:       lockWait,
		policy:         policy,
		clock:          clock,
		defaultRegime:  defaultRegime,
		log:            orNop(log),
	}
}

// GetObligationsByPeriod vistas de liquidación del período con su historial de pagos.
func (uc *SettlementUseCase) GetObligationsByPeriod(ctx context.Context, month, regime string) ([]dto.SettlementObligationResponse, error) {
	c, err := loadClosure(ctx, uc.closureRepo, uc.clock, month, regime, uc.defaultRegime, true)
	if err != nil {
		return nil, err
	}
	views, err := uc.views(ctx, c)
	if err != nil {
		return nil, err
	}
	return lo.Map(views, func(v entity.TaxSettlementObligation, _ int) dto.SettlementObligationResponse {
		return toSettlementResponse(v)
	}), nil
}

// BuildTaxSettlementEntryPreview arma el asiento del pago o cobro sin persistirlo. Aplica las
// mismas validaciones que el registro.
func (uc *SettlementUseCase) BuildTaxSettlementEntryPreview(ctx context.Context, month, settlementID string, in dto.SettlementRequest) (*dto.SettlementPreviewResponse, error) {
	c, err := loadClosure(ctx, uc.closureRepo, uc.clock, month, in.Regime, uc.defaultRegime, true)
	if err != nil {
		return nil, err
	}
	view, err := uc.find(ctx, c, settlementID)
	if err != nil {
		return nil, err
	}
	r, plan, err := uc.plan(ctx, view, in)
	if err != nil {
		return nil, err
	}
	return toSettlementPreview(r, view, plan), nil
}

// RegisterTaxSettlement registra el pago o cobro: asiento, vínculo de pago y estado de la
// obligación en una sola transacción. El saldo pendiente se vuelve a calcular bajo el lock de
// la obligación, de modo que dos registros simultáneos no la cancelen de más.
func (uc *SettlementUseCase) RegisterTaxSettlement(ctx context.Context, month, settlementID string, in dto.SettlementRequest) (*dto.SettlementResultResponse, error) {
	c, err := loadClosure(ctx, uc.closureRepo, uc.clock, month, in.Regime, uc.defaultRegime, true)
	if err != nil {
		return nil, err
	}
	view, err := uc.find(ctx, c, settlementID)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.lock(ctx, view.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	view, err = uc.find(ctx, c, view.ID)
	if err != nil {
		return nil, err
	}
	_, plan, err := uc.plan(ctx, view, in)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	paymentID := uuid.New().String()
	entry := &entity.JournalEntry{
		ID:    uuid.New().String(),
		Date:  plan.date,
		Memo:  plan.memo,
		Lines: plan.lines,
		Metadata: entity.EntryMetadata{
			SourceModule: entity.SourceModuleTaxes,
			SourceID:     tax.SettlementSourceID(view.ID, paymentID),
			Tag:          tax.NewTag(view.TaxType, view.PeriodKey, entity.EntryKindSettlement),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	link := entity.TaxPaymentLink{
		ID:               paymentID,
		ObligationID:     lo.Ternary(view.ObligationID != "", view.ObligationID, view.ID),
		SettlementID:     view.ID,
		JournalEntryID:   entry.ID,
		PaidAt:           plan.date,
		Method:           plan.method,
		Reference:        strings.TrimSpace(in.Reference),
		Amount:           in.Amount,
		TaxType:          view.TaxType,
		PeriodKey:        view.PeriodKey,
		Jurisdiction:     view.Jurisdiction,
		Direction:        view.Direction,
		SourceTaxEntryID: view.SourceTaxEntryID,
		CreatedAt:        now,
	}

	err = uc.txRunner.RunTax(ctx, func(
		journalRepo repository.JournalRepository,
		obligationRepo repository.TaxObligationRepository,
		paymentRepo repository.TaxPaymentRepository,
		_ repository.TaxClosureRepository,
	) error {
		if err := journalRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("crear asiento de cancelación: %w", err)
		}
		if err := paymentRepo.Create(ctx, &link); err != nil {
			return fmt.Errorf("registrar pago: %w", err)
		}
		if view.ObligationID != "" && view.Direction == entity.DirectionPayable {
			if _, err := uc.store.RecomputeStatusInTx(ctx, journalRepo, obligationRepo, paymentRepo, view.ObligationID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("period", view.PeriodKey).Str("tax_type", string(view.TaxType)).
		Str("obligation_id", view.ID).Str("entry_id", entry.ID).Str("payment_id", paymentID).
		Str("amount", in.Amount.String()).Str("direction", string(view.Direction)).Msg("cancelación registrada")

	view.Payments = append(view.Payments, link)
	view.AmountSettled = view.AmountSettled.Add(link.Amount)
	view.AmountRemaining = uc.policy.Remaining(view.AmountTotal, view.AmountSettled)
	view.Status = uc.policy.DeriveStatus(view.AmountTotal, view.AmountSettled)
	return &dto.SettlementResultResponse{
		EntryID:    entry.ID,
		PaymentID:  paymentID,
		Obligation: toSettlementResponse(view),
	}, nil
}

// lock toma el lock de la obligación esperando a lo sumo lockWait. Vencida la espera devuelve
// un error que envuelve context.DeadlineExceeded.
func (uc *SettlementUseCase) lock(ctx context.Context, settlementID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.lockWait)
	defer cancel()
	unlock, err := uc.locker.Lock(lockCtx, settlementID)
	if err != nil {
		uc.log.Warn().Str("obligation_id", settlementID).Dur("wait", uc.lockWait).Err(err).Msg("lock de obligación no disponible")
		return nil, fmt.Errorf("lock de obligación %s: %w", settlementID, err)
	}
	return unlock, nil
}

func (uc *SettlementUseCase) views(ctx context.Context, c *entity.TaxClosePeriod) ([]entity.TaxSettlementObligation, error) {
	obligations, err := uc.obligationRepo.List(ctx, c.Month)
	if err != nil {
		return nil, fmt.Errorf("listar obligaciones: %w", err)
	}
	entries, err := uc.journalRepo.ListByModule(ctx, entity.SourceModuleTaxes)
	if err != nil {
		return nil, fmt.Errorf("asientos de impuestos: %w", err)
	}
	payments, err := uc.store.LivePayments(ctx, c.Month)
	if err != nil {
		return nil, err
	}
	ivaBalance := decimal.Zero
	if c.Regime == entity.RegimeRI {
		ivaBalance = tax.ReportedTotals(c)[entity.TaxTypeIVA]
	}
	return uc.policy.BuildSettlementObligations(tax.ReconcileInput{
		Period:      c.Month,
		Obligations: obligations,
		IVABalance:  ivaBalance,
		EntryIDs:    determinationEntryIDs(c, entries),
		Payments:    payments,
	}), nil
}

func (uc *SettlementUseCase) find(ctx context.Context, c *entity.TaxClosePeriod, id string) (entity.TaxSettlementObligation, error) {
	views, err := uc.views(ctx, c)
	if err != nil {
		return entity.TaxSettlementObligation{}, err
	}
	v, ok := tax.FindSettlementObligation(views, id)
	if !ok {
		return entity.TaxSettlementObligation{}, fmt.Errorf("%w: %s", domain.ErrObligationNotFound, id)
	}
	return v, nil
}

type settlementPlan struct {
	lines  []entity.EntryLine
	date   time.Time
	memo   string
	method string
}

// plan valida la cancelación contra la vista vigente y arma sus renglones.
func (uc *SettlementUseCase) plan(ctx context.Context, view entity.TaxSettlementObligation, in dto.SettlementRequest) (*tax.AccountResolver, settlementPlan, error) {
	var p settlementPlan
	if !in.Amount.IsPositive() {
		return nil, p, domain.ErrAmountNotPositive
	}
	p.method = strings.ToUpper(strings.TrimSpace(in.Method))
	if !afip.ValidPaymentMethods[p.method] {
		return nil, p, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, in.Method)
	}
	if view.Direction == entity.DirectionReceivable && view.TaxType == entity.TaxTypeIVA && strings.TrimSpace(in.Reference) == "" {
		return nil, p, domain.ErrReferenceRequired
	}
	if in.Amount.GreaterThan(view.AmountRemaining.Add(uc.policy.Epsilon)) {
		return nil, p, fmt.Errorf("%w: importe %s, pendiente %s", domain.ErrExceedsRemaining,
			in.Amount.StringFixed(2), view.AmountRemaining.StringFixed(2))
	}

	r, err := loadResolver(ctx, uc.accountRepo, uc.mappingRepo)
	if err != nil {
		return nil, p, err
	}
	role, ok := tax.ObligationRole(view.TaxType, view.Direction)
	if !ok {
		return nil, p, fmt.Errorf("%w: %s %s", domain.ErrInvalidInput, view.TaxType, view.Direction)
	}
	obligationAccountID, err := r.MustResolve(role, in.ObligationAccountID)
	if err != nil {
		return nil, p, err
	}

	p.date = uc.clock.Now()
	if in.Date != nil && !in.Date.IsZero() {
		p.date = *in.Date
	}
	p.memo = strings.TrimSpace(in.Memo)
	if p.memo == "" {
		verb := "Pago"
		if view.Direction == entity.DirectionReceivable {
			verb = "Cobro saldo a favor"
		}
		p.memo = fmt.Sprintf("%s %s %s", verb, view.TaxType.Label(), view.PeriodKey)
		if view.Jurisdiction != afip.JurisdictionGeneral && view.Jurisdiction != afip.JurisdictionNational {
			p.memo += " " + view.Jurisdiction
		}
	}
	if ref := strings.TrimSpace(in.Reference); ref != "" {
		p.memo += " (" + ref + ")"
	}

	splits := lo.Map(in.Splits, func(s dto.SplitRequest, _ int) tax.Split {
		return tax.Split{AccountID: s.AccountID, Amount: s.Amount}
	})
	p.lines, err = uc.policy.BuildSettlementLines(r, tax.SettlementLinesInput{
		Direction:           view.Direction,
		Amount:              in.Amount,
		ObligationAccountID: obligationAccountID,
		Splits:              splits,
		Description:         p.memo,
	})
	if err != nil {
		return nil, p, err
	}
	return r, p, nil
}

func toSettlementPreview(r *tax.AccountResolver, view entity.TaxSettlementObligation, p settlementPlan) *dto.SettlementPreviewResponse {
	e := entity.JournalEntry{Lines: p.lines}
	debit, credit := e.Totals()
	return &dto.SettlementPreviewResponse{
		SettlementID: view.ID,
		Direction:    string(view.Direction),
		Date:         p.date,
		Memo:         p.memo,
		Lines:        toLineDTOs(r, p.lines),
		TotalDebit:   debit,
		TotalCredit:  credit,
	}
}
