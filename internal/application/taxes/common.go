package taxes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}

// parseMonth valida el período YYYY-MM.
func parseMonth(month string) (time.Time, error) {
	t, err := tax.ParsePeriod(month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return t, nil
}

// parseRegime régimen de la petición; vacío usa el por defecto.
func parseRegime(raw string, def entity.Regime) (entity.Regime, error) {
	r := entity.Regime(strings.ToUpper(strings.TrimSpace(raw)))
	if r == "" {
		r = def
	}
	if !r.IsValid() {
		return "", fmt.Errorf("%w: régimen %q", domain.ErrInvalidInput, raw)
	}
	return r, nil
}

func parseTaxType(raw string) (entity.TaxType, error) {
	t := entity.TaxType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: impuesto %q", domain.ErrInvalidInput, raw)
	}
	return t, nil
}

// lastDayOfMonth fecha de los asientos de determinación.
func lastDayOfMonth(period time.Time) time.Time {
	return time.Date(period.Year(), period.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// loadResolver foto del plan de cuentas y de las asignaciones configuradas.
func loadResolver(ctx context.Context, accounts repository.AccountRepository, mappings repository.AccountMappingRepository) (*tax.AccountResolver, error) {
	list, err := accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan de cuentas: %w", err)
	}
	byRole := map[string]string{}
	if mappings != nil {
		ms, err := mappings.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("asignaciones de cuentas: %w", err)
		}
		for _, m := range ms {
			byRole[m.Role] = m.AccountID
		}
	}
	return tax.NewAccountResolver(list, byRole), nil
}

// determinationEntryIDs asiento de origen por impuesto: el registrado en el cierre o, si falta,
// el primer asiento de determinación etiquetado para el impuesto y el período.
func determinationEntryIDs(c *entity.TaxClosePeriod, entries []*entity.JournalEntry) map[entity.TaxType]string {
	out := make(map[entity.TaxType]string, len(c.EntryIDs))
	for t, id := range c.EntryIDs {
		out[t] = id
	}
	for _, e := range entries {
		tag, ok := tax.TagOf(e)
		if !ok || tag.Kind != entity.EntryKindDetermination || tag.Period != c.Month {
			continue
		}
		if _, found := out[tag.TaxType]; !found {
			out[tag.TaxType] = e.ID
		}
	}
	return out
}

// ── Mapeo a DTO ───────────────────────────────────────────────────────────────

func toTotalsMap(t entity.ClosureTotals) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(t))
	for k, v := range t {
		out[string(k)] = v
	}
	return out
}

func toClosureResponse(c *entity.TaxClosePeriod) dto.ClosureResponse {
	out := dto.ClosureResponse{
		ID:     c.ID,
		Month:  c.Month,
		Regime: string(c.Regime),
		Status: string(c.Status),
		Steps: dto.ClosureStepsResponse{
			OperationsReconciled: c.Steps.OperationsReconciled,
			ReconciliationDone:   c.Steps.ReconciliationDone,
			EntriesGenerated:     c.Steps.EntriesGenerated,
			Filed:                c.Steps.Filed,
		},
		Totals:           toTotalsMap(c.Totals),
		Reported:         toTotalsMap(tax.ReportedTotals(c)),
		Overrides:        make(map[string]dto.OverrideRequest, len(c.Overrides)),
		EntryIDs:         lo.MapKeys(c.EntryIDs, func(_ string, k entity.TaxType) string { return string(k) }),
		Audit:            make([]dto.AuditEntryResponse, 0, len(c.Audit)),
		Corrections:      make([]dto.CorrectionRequest, 0, len(c.Corrections)),
		AutonomosEnabled: c.Settings.AutonomosEnabled,
		RefreshedAt:      c.RefreshedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	for t, o := range c.Overrides {
		out.Overrides[string(t)] = dto.OverrideRequest{Mode: string(o.Mode), Amount: o.Amount}
	}
	if c.Snapshot != nil {
		out.Snapshot = &dto.SnapshotResponse{
			Totals:     toTotalsMap(c.Snapshot.Totals),
			EntryIDs:   lo.MapKeys(c.Snapshot.EntryIDs, func(_ string, k entity.TaxType) string { return string(k) }),
			CapturedAt: c.Snapshot.CapturedAt,
		}
	}
	for _, a := range c.Audit {
		out.Audit = append(out.Audit, dto.AuditEntryResponse{Action: a.Action, At: a.At, UserID: a.UserID})
	}
	for _, corr := range c.Corrections {
		out.Corrections = append(out.Corrections, dto.CorrectionRequest{
			ID: corr.ID, TaxType: string(corr.TaxType), Jurisdiction: corr.Jurisdiction,
			Amount: corr.Amount, Description: corr.Description,
		})
	}
	return out
}

func toPaymentResponses(ps []entity.TaxPaymentLink) []dto.PaymentResponse {
	out := make([]dto.PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, dto.PaymentResponse{
			ID: p.ID, JournalEntryID: p.JournalEntryID, PaidAt: p.PaidAt, Method: p.Method,
			Reference: p.Reference, Amount: p.Amount, Direction: string(p.Direction),
		})
	}
	return out
}

func toSettlementResponse(v entity.TaxSettlementObligation) dto.SettlementObligationResponse {
	return dto.SettlementObligationResponse{
		ID:               v.ID,
		ObligationID:     v.ObligationID,
		TaxType:          string(v.TaxType),
		TaxLabel:         v.TaxType.Label(),
		Period:           v.PeriodKey,
		Jurisdiction:     v.Jurisdiction,
		Direction:        string(v.Direction),
		SourceTaxEntryID: v.SourceTaxEntryID,
		DueDate:          v.DueDate,
		AmountTotal:      v.AmountTotal,
		AmountSettled:    v.AmountSettled,
		AmountRemaining:  v.AmountRemaining,
		Status:           v.Status,
		Payments:         toPaymentResponses(v.Payments),
	}
}

func toSummaryResponse(s entity.ObligationSummary) dto.ObligationSummaryResponse {
	o := s.Obligation
	return dto.ObligationSummaryResponse{
		ID:              o.ID,
		Key:             o.Key,
		TaxType:         string(o.TaxType),
		TaxLabel:        o.TaxType.Label(),
		Period:          o.Period,
		Jurisdiction:    o.Jurisdiction,
		DueDate:         o.DueDate,
		AmountDue:       o.AmountDue,
		AmountPaid:      s.AmountPaid,
		AmountRemaining: s.AmountRemaining,
		Status:          o.Status,
		Payments:        toPaymentResponses(s.Payments),
	}
}

// toLineDTOs renglones con código y nombre de cuenta para mostrar.
func toLineDTOs(r *tax.AccountResolver, lines []entity.EntryLine) []dto.EntryLineDTO {
	out := make([]dto.EntryLineDTO, 0, len(lines))
	for _, l := range lines {
		item := dto.EntryLineDTO{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Description: l.Description}
		if a, ok := r.Account(l.AccountID); ok {
			item.AccountCode, item.AccountName = a.Code, a.Name
		}
		out = append(out, item)
	}
	return out
}

func sortSummaries(items []entity.ObligationSummary) {
	order := lo.SliceToMap(entity.AllTaxTypes, func(t entity.TaxType) (entity.TaxType, int) {
		return t, lo.IndexOf(entity.AllTaxTypes, t)
	})
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Obligation, items[j].Obligation
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if order[a.TaxType] != order[b.TaxType] {
			return order[a.TaxType] < order[b.TaxType]
		}
		return a.Jurisdiction < b.Jurisdiction
	})
}
