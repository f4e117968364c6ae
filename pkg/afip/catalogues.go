// Package afip contiene catálogos y reglas de calendario de los impuestos argentinos
// que administra el motor de cierre: IVA, Ingresos Brutos, Monotributo, Autónomos y
// los regímenes de agente de retención/percepción (ARCA, ex AFIP, y rentas provinciales).
package afip

import "time"

// =============================================================================
// Impuestos
// =============================================================================

const (
	TaxIVA          = "IVA"           // Impuesto al Valor Agregado
	TaxIIBB         = "IIBB"          // Ingresos Brutos (provincial)
	TaxMonotributo  = "MONOTRIBUTO"   // Régimen Simplificado
	TaxAutonomos    = "AUTONOMOS"     // Aportes de trabajadores autónomos
	TaxRetDepositar = "RET_DEPOSITAR" // Retenciones practicadas como agente, a depositar
	TaxPerDepositar = "PER_DEPOSITAR" // Percepciones practicadas como agente, a depositar
)

// TaxLabels etiquetas legibles por impuesto (para mensajes y constancias).
var TaxLabels = map[string]string{
	TaxIVA:          "IVA",
	TaxIIBB:         "Ingresos Brutos",
	TaxMonotributo:  "Monotributo",
	TaxAutonomos:    "Autónomos",
	TaxRetDepositar: "Retenciones a depositar",
	TaxPerDepositar: "Percepciones a depositar",
}

// =============================================================================
// Regímenes
// =============================================================================

const (
	RegimeRI = "RI" // Responsable Inscripto
	RegimeMT = "MT" // Monotributista
)

// =============================================================================
// Jurisdicciones
// =============================================================================

const (
	JurisdictionGeneral  = "GENERAL"  // clave por defecto para impuestos nacionales
	JurisdictionNational = "NATIONAL" // saldo a favor sintetizado (IVA)
)

// ProvinceCodes códigos de jurisdicción provincial para IIBB (Convenio Multilateral).
var ProvinceCodes = map[string]string{
	"CABA": "Ciudad Autónoma de Buenos Aires",
	"BA":   "Buenos Aires",
	"CBA":  "Córdoba",
	"SF":   "Santa Fe",
	"MZA":  "Mendoza",
	"TUC":  "Tucumán",
	"ER":   "Entre Ríos",
	"SAL":  "Salta",
	"NQN":  "Neuquén",
	"CHU":  "Chubut",
}

// =============================================================================
// Medios de pago de obligaciones
// =============================================================================

const (
	PaymentMethodTransferencia    = "TRANSFERENCIA"
	PaymentMethodEfectivo         = "EFECTIVO"
	PaymentMethodCheque           = "CHEQUE"
	PaymentMethodCompensacion     = "COMPENSACION"
	PaymentMethodDebitoAutomatico = "DEBITO_AUTOMATICO"
)

// ValidPaymentMethods medios aceptados al registrar una cancelación.
var ValidPaymentMethods = map[string]bool{
	PaymentMethodTransferencia:    true,
	PaymentMethodEfectivo:         true,
	PaymentMethodCheque:           true,
	PaymentMethodCompensacion:     true,
	PaymentMethodDebitoAutomatico: true,
}

// =============================================================================
// Vencimientos
// =============================================================================

// dueRule día de vencimiento y desplazamiento de meses respecto del período.
type dueRule struct {
	day         int
	monthOffset int
}

// Calendario simplificado: los vencimientos reales dependen de la terminación de CUIT;
// se toma el día más tardío de cada cronograma.
var dueRules = map[string]dueRule{
	TaxMonotributo:  {day: 20, monthOffset: 0},
	TaxIVA:          {day: 18, monthOffset: 1},
	TaxAutonomos:    {day: 18, monthOffset: 1},
	TaxRetDepositar: {day: 18, monthOffset: 1},
	TaxPerDepositar: {day: 18, monthOffset: 1},
	TaxIIBB:         {day: 15, monthOffset: 1},
}

// DueDate calcula el vencimiento de un impuesto para el período (primer día del mes).
// Si cae en fin de semana se corre al lunes siguiente.
func DueDate(tax string, period time.Time) time.Time {
	rule, ok := dueRules[tax]
	if !ok {
		rule = dueRule{day: 18, monthOffset: 1}
	}
	first := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	due := first.AddDate(0, rule.monthOffset, rule.day-1)
	switch due.Weekday() {
	case time.Saturday:
		due = due.AddDate(0, 0, 2)
	case time.Sunday:
		due = due.AddDate(0, 0, 1)
	}
	return due
}
