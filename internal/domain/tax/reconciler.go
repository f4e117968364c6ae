package tax

import (
	"sort"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Niveles de coincidencia pago-obligación; menor es más fuerte.
const (
	matchNone = iota
	matchByID
	matchByTaxPeriod
	matchBySourceEntry
)

// MatchKeys claves con las que un pago puede imputarse a una obligación.
type MatchKeys struct {
	IDs              []string // id de liquidación y/o id del registro
	TaxType          entity.TaxType
	PeriodKey        string
	Jurisdiction     string
	Direction        entity.Direction
	SourceTaxEntryID string
}

// KeysOf claves de una vista de liquidación.
func KeysOf(o entity.TaxSettlementObligation) MatchKeys {
	ids := []string{o.ID}
	if o.ObligationID != "" && o.ObligationID != o.ID {
		ids = append(ids, o.ObligationID)
	}
	return MatchKeys{
		IDs:              ids,
		TaxType:          o.TaxType,
		PeriodKey:        o.PeriodKey,
		Jurisdiction:     o.Jurisdiction,
		Direction:        o.Direction,
		SourceTaxEntryID: o.SourceTaxEntryID,
	}
}

// KeysOfRecord claves de un registro de obligación (siempre a pagar).
func KeysOfRecord(o entity.TaxObligation) MatchKeys {
	return MatchKeys{
		IDs:          []string{o.ID},
		TaxType:      o.TaxType,
		PeriodKey:    o.Period,
		Jurisdiction: o.Jurisdiction,
		Direction:    entity.DirectionPayable,
	}
}

// rank nivel de coincidencia; el sentido debe coincidir siempre.
func (k MatchKeys) rank(p entity.TaxPaymentLink) int {
	if p.Direction != "" && p.Direction != k.Direction {
		return matchNone
	}
	if p.Direction == "" && k.Direction != entity.DirectionPayable {
		return matchNone
	}
	for _, id := range k.IDs {
		if id == "" {
			continue
		}
		if p.ObligationID == id || p.SettlementID == id {
			return matchByID
		}
	}
	if p.TaxType == k.TaxType && p.PeriodKey != "" && p.PeriodKey == k.PeriodKey && sameJurisdiction(p.Jurisdiction, k.Jurisdiction) {
		return matchByTaxPeriod
	}
	if p.SourceTaxEntryID != "" && p.SourceTaxEntryID == k.SourceTaxEntryID {
		return matchBySourceEntry
	}
	return matchNone
}

// sameJurisdiction una jurisdicción vacía en cualquiera de los lados no restringe.
func sameJurisdiction(a, b string) bool {
	return a == "" || b == "" || a == b
}

// AllocatePayments imputa cada pago a una sola obligación: la de coincidencia más fuerte y,
// a igual nivel, la primera en orden. Devuelve los pagos por índice de obligación.
func AllocatePayments(keys []MatchKeys, payments []entity.TaxPaymentLink) [][]entity.TaxPaymentLink {
	out := make([][]entity.TaxPaymentLink, len(keys))
	for _, p := range payments {
		best, bestRank := -1, matchNone
		for i, k := range keys {
			r := k.rank(p)
			if r == matchNone {
				continue
			}
			if best < 0 || r < bestRank {
				best, bestRank = i, r
			}
		}
		if best >= 0 {
			out[best] = append(out[best], p)
		}
	}
	for i := range out {
		sort.SliceStable(out[i], func(a, b int) bool { return out[i][a].PaidAt.Before(out[i][b].PaidAt) })
	}
	return out
}

// SumPayments suma de importes.
func SumPayments(payments []entity.TaxPaymentLink) decimal.Decimal {
	return lo.Reduce(payments, func(acc decimal.Decimal, p entity.TaxPaymentLink, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
}

// ReconcileInput datos del período para construir las vistas de liquidación.
type ReconcileInput struct {
	Period      string
	Obligations []entity.TaxObligation
	// IVABalance posición efectiva de IVA; negativa = saldo a favor a cobrar.
	IVABalance decimal.Decimal
	// EntryIDs asientos de determinación por impuesto (origen de cada liquidación).
	EntryIDs map[entity.TaxType]string
	Payments []entity.TaxPaymentLink
}

// BuildSettlementObligations vistas de liquidación del período: una por obligación registrada
// con importe y, si la posición de IVA es un saldo a favor, una a cobrar sintetizada. Los
// importes cancelados y el estado se recalculan desde los pagos en cada llamada.
func (p Policy) BuildSettlementObligations(in ReconcileInput) []entity.TaxSettlementObligation {
	var views []entity.TaxSettlementObligation
	for _, o := range in.Obligations {
		if !o.AmountDue.IsPositive() {
			continue
		}
		src := in.EntryIDs[o.TaxType]
		due := o.DueDate
		views = append(views, entity.TaxSettlementObligation{
			ID:               SettlementID(o.TaxType, in.Period, entity.DirectionPayable, o.Jurisdiction, src),
			ObligationID:     o.ID,
			TaxType:          o.TaxType,
			PeriodKey:        in.Period,
			Jurisdiction:     NormalizeJurisdiction(o.Jurisdiction),
			Direction:        entity.DirectionPayable,
			SourceTaxEntryID: src,
			DueDate:          &due,
			AmountTotal:      o.AmountDue,
		})
	}
	if in.IVABalance.IsNegative() && !p.ApproxZero(in.IVABalance) {
		src := in.EntryIDs[entity.TaxTypeIVA]
		views = append(views, entity.TaxSettlementObligation{
			ID:               SettlementID(entity.TaxTypeIVA, in.Period, entity.DirectionReceivable, afip.JurisdictionNational, src),
			TaxType:          entity.TaxTypeIVA,
			PeriodKey:        in.Period,
			Jurisdiction:     afip.JurisdictionNational,
			Direction:        entity.DirectionReceivable,
			SourceTaxEntryID: src,
			AmountTotal:      in.IVABalance.Neg(),
		})
	}
	sortViews(views)

	keys := lo.Map(views, func(v entity.TaxSettlementObligation, _ int) MatchKeys { return KeysOf(v) })
	allocated := AllocatePayments(keys, in.Payments)
	for i := range views {
		views[i].Payments = allocated[i]
		views[i].AmountSettled = SumPayments(allocated[i])
		views[i].AmountRemaining = p.Remaining(views[i].AmountTotal, views[i].AmountSettled)
		views[i].Status = p.DeriveStatus(views[i].AmountTotal, views[i].AmountSettled)
	}
	return views
}

// FindSettlementObligation busca la vista por id de liquidación o id de registro.
func FindSettlementObligation(views []entity.TaxSettlementObligation, id string) (entity.TaxSettlementObligation, bool) {
	return lo.Find(views, func(v entity.TaxSettlementObligation) bool {
		return v.ID == id || (v.ObligationID != "" && v.ObligationID == id)
	})
}

func sortViews(views []entity.TaxSettlementObligation) {
	order := make(map[entity.TaxType]int, len(entity.AllTaxTypes))
	for i, t := range entity.AllTaxTypes {
		order[t] = i
	}
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if order[a.TaxType] != order[b.TaxType] {
			return order[a.TaxType] < order[b.TaxType]
		}
		if a.Direction != b.Direction {
			return a.Direction == entity.DirectionPayable
		}
		return a.Jurisdiction < b.Jurisdiction
	})
}
