package tax

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
)

const periodLayout = "2006-01"

// settlementNamespace espacio de nombres de los ids de liquidación (UUID v5).
var settlementNamespace = uuid.MustParse("6f1c2b8e-4a53-5d0e-9b7a-3c1f0e2d4a61")

// ParsePeriod valida un período YYYY-MM y devuelve el primer día del mes (UTC).
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(periodLayout, strings.TrimSpace(period))
	if err != nil {
		return time.Time{}, fmt.Errorf("período inválido %q (formato YYYY-MM): %w", period, err)
	}
	return t, nil
}

// NormalizeJurisdiction mayúsculas sin espacios; vacío = GENERAL.
func NormalizeJurisdiction(j string) string {
	j = strings.ToUpper(strings.TrimSpace(j))
	if j == "" {
		return afip.JurisdictionGeneral
	}
	return j
}

// ObligationKey clave natural de una obligación: TAXTYPE|YYYY-MM|JURISDICTION.
func ObligationKey(taxType entity.TaxType, period, jurisdiction string) string {
	return strings.Join([]string{
		strings.ToUpper(strings.TrimSpace(string(taxType))),
		strings.TrimSpace(period),
		NormalizeJurisdiction(jurisdiction),
	}, "|")
}

// SettlementID id determinístico de una liquidación.
func SettlementID(taxType entity.TaxType, period string, direction entity.Direction, jurisdiction, sourceTaxEntryID string) string {
	name := strings.Join([]string{
		string(taxType), period, string(direction), NormalizeJurisdiction(jurisdiction), sourceTaxEntryID,
	}, "|")
	return uuid.NewSHA1(settlementNamespace, []byte(name)).String()
}

// DeterminationSourceID clave de idempotencia del asiento de determinación.
func DeterminationSourceID(taxType entity.TaxType, period string, regime entity.Regime) string {
	return fmt.Sprintf("tax-determination:%s:%s:%s", taxType, period, regime)
}

// SettlementSourceID clave de idempotencia del asiento de cancelación.
func SettlementSourceID(settlementID, paymentID string) string {
	return fmt.Sprintf("tax-settlement:%s:%s", settlementID, paymentID)
}

// NewTag etiqueta estructurada para un asiento del motor.
func NewTag(taxType entity.TaxType, period string, kind entity.EntryKind) *entity.EntryTag {
	return &entity.EntryTag{Source: entity.SourceModuleTaxes, TaxType: taxType, Period: period, Kind: kind}
}

// TagOf devuelve la etiqueta del asiento: la estructurada si existe, si no la reconstruida
// desde un SourceID heredado.
func TagOf(e *entity.JournalEntry) (entity.EntryTag, bool) {
	if e == nil {
		return entity.EntryTag{}, false
	}
	if e.Metadata.Tag != nil && e.Metadata.Tag.Source == entity.SourceModuleTaxes {
		return *e.Metadata.Tag, true
	}
	return LegacyTagFromSourceID(e.Metadata.SourceID)
}

const legacyPrefix = "impuestos-"

// LegacySourceID SourceID de los asientos de determinación anteriores a la clave actual.
func LegacySourceID(taxType entity.TaxType, period string) string {
	return legacyPrefix + strings.ToLower(string(taxType)) + "-" + period
}

// LegacyTagFromSourceID interpreta los SourceID de asientos anteriores a la etiqueta
// estructurada: "impuestos-<impuesto>-<YYYY-MM>", siempre de determinación.
func LegacyTagFromSourceID(sourceID string) (entity.EntryTag, bool) {
	if !strings.HasPrefix(sourceID, legacyPrefix) {
		return entity.EntryTag{}, false
	}
	rest := strings.TrimPrefix(sourceID, legacyPrefix)
	if len(rest) < len(periodLayout)+2 || rest[len(rest)-len(periodLayout)-1] != '-' {
		return entity.EntryTag{}, false
	}
	period := rest[len(rest)-len(periodLayout):]
	if _, err := ParsePeriod(period); err != nil {
		return entity.EntryTag{}, false
	}
	taxType := entity.TaxType(strings.ToUpper(rest[:len(rest)-len(periodLayout)-1]))
	if !taxType.IsValid() {
		return entity.EntryTag{}, false
	}
	return entity.EntryTag{
		Source:  entity.SourceModuleTaxes,
		TaxType: taxType,
		Period:  period,
		Kind:    entity.EntryKindDetermination,
	}, true
}
