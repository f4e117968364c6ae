package taxes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ObligationStore registro de obligaciones, único escritor de su estado. El estado persistido
// es una caché: siempre se puede volver a derivar de los pagos.
type ObligationStore struct {
	obligationRepo repository.TaxObligationRepository
	paymentRepo    repository.TaxPaymentRepository
	journalRepo    repository.JournalRepository
	policy         tax.Policy
	clock          Clock
	log            *logger.Logger
}

// NewObligationStore construye el store.
func NewObligationStore(
	obligationRepo repository.TaxObligationRepository,
	paymentRepo repository.TaxPaymentRepository,
	journalRepo repository.JournalRepository,
	policy tax.Policy,
	clock Clock,
	log *logger.Logger,
) *ObligationStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ObligationStore{
		obligationRepo: obligationRepo,
		paymentRepo:    paymentRepo,
		journalRepo:    journalRepo,
		policy:         policy,
		clock:          clock,
		log:            orNop(log),
	}
}

// UpsertInput datos de una obligación por clave natural.
type UpsertInput struct {
	TaxType      entity.TaxType
	Period       string
	Jurisdiction string
	DueDate      time.Time
	AmountDue    decimal.Decimal
}

// Upsert crea o actualiza la obligación por (impuesto, período, jurisdicción). Un importe no
// positivo deja el registro existente como NOT_APPLICABLE y no crea uno nuevo (nil, nil).
func (s *ObligationStore) Upsert(ctx context.Context, in UpsertInput) (*entity.TaxObligation, error) {
	return s.upsert(ctx, s.obligationRepo, in)
}

func (s *ObligationStore) upsert(ctx context.Context, repo repository.TaxObligationRepository, in UpsertInput) (*entity.TaxObligation, error) {
	key := tax.ObligationKey(in.TaxType, in.Period, in.Jurisdiction)
	existing, err := repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("obligación %s: %w", key, err)
	}
	applicable := in.AmountDue.IsPositive()
	if existing == nil && !applicable {
		return nil, nil
	}

	now := s.clock.Now()
	ob := existing
	if ob == nil {
		ob = &entity.TaxObligation{
			ID:           uuid.New().String(),
			Key:          key,
			TaxType:      in.TaxType,
			Period:       in.Period,
			Jurisdiction: tax.NormalizeJurisdiction(in.Jurisdiction),
			Status:       entity.ObligationStatusPending,
			CreatedAt:    now,
		}
	}
	ob.DueDate = in.DueDate
	ob.UpdatedAt = now
	if applicable {
		ob.AmountDue = in.AmountDue
		if ob.Status == entity.ObligationStatusNotApplicable || ob.Status == "" {
			ob.Status = entity.ObligationStatusPending
		}
	} else {
		ob.AmountDue = decimal.Zero
		ob.Status = entity.ObligationStatusNotApplicable
	}
	if err := repo.Upsert(ctx, ob); err != nil {
		return nil, fmt.Errorf("guardar obligación %s: %w", key, err)
	}
	return ob, nil
}

// SyncFromClosure registra las obligaciones del período con los importes efectivos del cierre
// (ajustes y correcciones incluidos) y sus vencimientos.
func (s *ObligationStore) SyncFromClosure(ctx context.Context, c *entity.TaxClosePeriod) error {
	period, err := parseMonth(c.Month)
	if err != nil {
		return err
	}
	for _, a := range tax.ObligationAmounts(c) {
		ob, err := s.Upsert(ctx, UpsertInput{
			TaxType:      a.TaxType,
			Period:       c.Month,
			Jurisdiction: a.Jurisdiction,
			DueDate:      afip.DueDate(string(a.TaxType), period),
			AmountDue:    a.Amount,
		})
		if err != nil {
			return err
		}
		if ob != nil {
			s.log.Debug().Str("period", c.Month).Str("tax_type", string(a.TaxType)).
				Str("obligation_id", ob.ID).Str("amount", a.Amount.String()).Msg("obligación sincronizada")
		}
	}
	return nil
}

// LivePayments pagos del período cuyo asiento sigue existiendo. Los huérfanos se eliminan.
func (s *ObligationStore) LivePayments(ctx context.Context, period string) ([]entity.TaxPaymentLink, error) {
	live, orphans, err := splitOrphans(ctx, s.journalRepo, s.paymentRepo, period)
	if err != nil {
		return nil, err
	}
	for _, p := range orphans {
		if err := s.paymentRepo.Delete(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("eliminar pago huérfano %s: %w", p.ID, err)
		}
		s.log.Warn().Str("payment_id", p.ID).Str("entry_id", p.JournalEntryID).
			Str("period", p.PeriodKey).Msg("pago huérfano eliminado: su asiento ya no existe")
	}
	return live, nil
}

// splitOrphans separa los pagos del período según exista o no su asiento.
func splitOrphans(
	ctx context.Context,
	journalRepo repository.JournalRepository,
	paymentRepo repository.TaxPaymentRepository,
	period string,
) (live, orphans []entity.TaxPaymentLink, err error) {
	payments, err := paymentRepo.List(ctx, period)
	if err != nil {
		return nil, nil, fmt.Errorf("listar pagos: %w", err)
	}
	if len(payments) == 0 {
		return payments, nil, nil
	}
	ids := lo.Uniq(lo.Map(payments, func(p entity.TaxPaymentLink, _ int) string { return p.JournalEntryID }))
	existing, err := journalRepo.BulkGet(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("verificar asientos de pagos: %w", err)
	}
	live, orphans = lo.FilterReject(payments, func(p entity.TaxPaymentLink, _ int) bool {
		_, ok := existing[p.JournalEntryID]
		return ok
	})
	return live, orphans, nil
}

// ListWithPaymentSummary obligaciones con sus pagos imputados. El estado recalculado se
// persiste cuando difiere del guardado.
func (s *ObligationStore) ListWithPaymentSummary(ctx context.Context, period string) ([]dto.ObligationSummaryResponse, error) {
	if period != "" {
		if _, err := parseMonth(period); err != nil {
			return nil, err
		}
	}
	obligations, err := s.obligationRepo.List(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("listar obligaciones: %w", err)
	}
	payments, err := s.LivePayments(ctx, period)
	if err != nil {
		return nil, err
	}
	summaries := s.summarize(obligations, payments)
	for i := range summaries {
		if err := s.persistStatus(ctx, s.obligationRepo, &summaries[i].Obligation, summaries[i].AmountPaid); err != nil {
			return nil, err
		}
	}
	sortSummaries(summaries)
	return lo.Map(summaries, func(sm entity.ObligationSummary, _ int) dto.ObligationSummaryResponse {
		return toSummaryResponse(sm)
	}), nil
}

// RecomputeStatusInTx recalcula el estado de la obligación con sus pagos vigentes usando los
// repositorios del llamador (misma transacción que el pago recién registrado). Los pagos
// huérfanos no cuentan; su borrado queda para LivePayments.
func (s *ObligationStore) RecomputeStatusInTx(
	ctx context.Context,
	journalRepo repository.JournalRepository,
	obligationRepo repository.TaxObligationRepository,
	paymentRepo repository.TaxPaymentRepository,
	obligationID string,
) (*entity.TaxObligation, error) {
	target, err := obligationRepo.GetByID(ctx, obligationID)
	if err != nil {
		return nil, fmt.Errorf("obligación %s: %w", obligationID, err)
	}
	if target == nil {
		return nil, nil
	}
	obligations, err := obligationRepo.List(ctx, target.Period)
	if err != nil {
		return nil, fmt.Errorf("listar obligaciones: %w", err)
	}
	payments, _, err := splitOrphans(ctx, journalRepo, paymentRepo, target.Period)
	if err != nil {
		return nil, err
	}
	for _, sm := range s.summarize(obligations, payments) {
		if sm.Obligation.ID != obligationID {
			continue
		}
		ob := sm.Obligation
		if err := s.persistStatus(ctx, obligationRepo, &ob, sm.AmountPaid); err != nil {
			return nil, err
		}
		return &ob, nil
	}
	return target, nil
}

func (s *ObligationStore) summarize(obligations []entity.TaxObligation, payments []entity.TaxPaymentLink) []entity.ObligationSummary {
	keys := lo.Map(obligations, func(o entity.TaxObligation, _ int) tax.MatchKeys { return tax.KeysOfRecord(o) })
	allocated := tax.AllocatePayments(keys, payments)
	out := make([]entity.ObligationSummary, 0, len(obligations))
	for i, o := range obligations {
		paid := tax.SumPayments(allocated[i])
		out = append(out, entity.ObligationSummary{
			Obligation:      o,
			AmountPaid:      paid,
			AmountRemaining: s.policy.Remaining(o.AmountDue, paid),
			Payments:        allocated[i],
		})
	}
	return out
}

func (s *ObligationStore) persistStatus(ctx context.Context, repo repository.TaxObligationRepository, ob *entity.TaxObligation, paid decimal.Decimal) error {
	status := s.policy.DeriveStatus(ob.AmountDue, paid)
	if status == ob.Status {
		return nil
	}
	if err := repo.UpdateStatus(ctx, ob.ID, status); err != nil {
		return fmt.Errorf("actualizar estado de obligación %s: %w", ob.ID, err)
	}
	s.log.Info().Str("obligation_id", ob.ID).Str("tax_type", string(ob.TaxType)).Str("period", ob.Period).
		Str("from", ob.Status).Str("to", status).Msg("estado de obligación actualizado")
	ob.Status = status
	return nil
}
