package afip

// Roles semánticos de cuentas contables usados por los asientos impositivos.
const (
	RoleIVADebitoFiscal        = "iva_debito_fiscal"
	RoleIVACreditoFiscal       = "iva_credito_fiscal"
	RoleIVARetenciones         = "iva_retenciones_sufridas"
	RoleIVAPercepciones        = "iva_percepciones_sufridas"
	RoleIVASaldoAFavor         = "iva_saldo_a_favor"
	RoleIVAAPagar              = "iva_a_pagar"
	RoleIIBBGasto              = "iibb_gasto"
	RoleIIBBRetenciones        = "iibb_retenciones_sufridas"
	RoleIIBBAPagar             = "iibb_a_pagar"
	RoleIIBBSaldoAFavor        = "iibb_saldo_a_favor"
	RoleMonotributoGasto       = "monotributo_gasto"
	RoleMonotributoAPagar      = "monotributo_a_pagar"
	RoleAutonomosGasto         = "autonomos_gasto"
	RoleAutonomosAPagar        = "autonomos_a_pagar"
	RoleRetencionesADepositar  = "retenciones_a_depositar"
	RolePercepcionesADepositar = "percepciones_a_depositar"
	RoleAjusteImpuestos        = "ajuste_impuestos"
)

// AccountRole describe una cuenta esperada del plan de cuentas: etiqueta para el usuario,
// código canónico del plan modelo y nombres aceptables para la búsqueda aproximada.
type AccountRole struct {
	Key   string
	Label string
	Code  string
	Names []string
}

// AccountRoles catálogo de roles del plan de cuentas modelo (PyME argentina).
var AccountRoles = map[string]AccountRole{
	RoleIVADebitoFiscal: {
		Key: RoleIVADebitoFiscal, Label: "IVA Débito Fiscal", Code: "2.1.3.01",
		Names: []string{"iva debito fiscal", "debito fiscal iva", "iva df"},
	},
	RoleIVACreditoFiscal: {
		Key: RoleIVACreditoFiscal, Label: "IVA Crédito Fiscal", Code: "1.1.4.01",
		Names: []string{"iva credito fiscal", "credito fiscal iva", "iva cf"},
	},
	RoleIVARetenciones: {
		Key: RoleIVARetenciones, Label: "Retenciones de IVA sufridas", Code: "1.1.4.02",
		Names: []string{"retenciones iva", "retenciones de iva sufridas", "iva retenciones"},
	},
	RoleIVAPercepciones: {
		Key: RoleIVAPercepciones, Label: "Percepciones de IVA sufridas", Code: "1.1.4.03",
		Names: []string{"percepciones iva", "percepciones de iva sufridas", "iva percepciones"},
	},
	RoleIVASaldoAFavor: {
		Key: RoleIVASaldoAFavor, Label: "IVA Saldo a favor", Code: "1.1.4.04",
		Names: []string{"iva saldo a favor", "saldo a favor iva", "saldo tecnico iva"},
	},
	RoleIVAAPagar: {
		Key: RoleIVAAPagar, Label: "IVA a pagar", Code: "2.1.3.02",
		Names: []string{"iva a pagar", "iva posicion", "posicion iva"},
	},
	RoleIIBBGasto: {
		Key: RoleIIBBGasto, Label: "Impuesto a los Ingresos Brutos (gasto)", Code: "5.2.1.01",
		Names: []string{"impuesto ingresos brutos", "ingresos brutos gasto", "iibb gasto"},
	},
	RoleIIBBRetenciones: {
		Key: RoleIIBBRetenciones, Label: "Retenciones y percepciones IIBB sufridas", Code: "1.1.4.05",
		Names: []string{"retenciones iibb", "percepciones iibb", "iibb retenciones"},
	},
	RoleIIBBAPagar: {
		Key: RoleIIBBAPagar, Label: "Ingresos Brutos a pagar", Code: "2.1.3.03",
		Names: []string{"iibb a pagar", "ingresos brutos a pagar"},
	},
	RoleIIBBSaldoAFavor: {
		Key: RoleIIBBSaldoAFavor, Label: "Ingresos Brutos saldo a favor", Code: "1.1.4.06",
		Names: []string{"iibb saldo a favor", "saldo a favor ingresos brutos"},
	},
	RoleMonotributoGasto: {
		Key: RoleMonotributoGasto, Label: "Monotributo (gasto)", Code: "5.2.1.02",
		Names: []string{"cuota monotributo", "monotributo gasto", "impuesto monotributo"},
	},
	RoleMonotributoAPagar: {
		Key: RoleMonotributoAPagar, Label: "Monotributo a pagar", Code: "2.1.3.04",
		Names: []string{"monotributo a pagar"},
	},
	RoleAutonomosGasto: {
		Key: RoleAutonomosGasto, Label: "Aportes autónomos (gasto)", Code: "5.2.1.03",
		Names: []string{"aportes autonomos gasto", "autonomos gasto", "cargas autonomos"},
	},
	RoleAutonomosAPagar: {
		Key: RoleAutonomosAPagar, Label: "Autónomos a pagar", Code: "2.1.3.05",
		Names: []string{"autonomos a pagar", "aportes autonomos a pagar"},
	},
	RoleRetencionesADepositar: {
		Key: RoleRetencionesADepositar, Label: "Retenciones a depositar", Code: "2.1.3.06",
		Names: []string{"retenciones a depositar", "retenciones practicadas a depositar"},
	},
	RolePercepcionesADepositar: {
		Key: RolePercepcionesADepositar, Label: "Percepciones a depositar", Code: "2.1.3.07",
		Names: []string{"percepciones a depositar", "percepciones practicadas a depositar"},
	},
	RoleAjusteImpuestos: {
		Key: RoleAjusteImpuestos, Label: "Ajustes de impuestos", Code: "5.2.1.99",
		Names: []string{"ajuste impuestos", "ajustes de impuestos", "diferencias de impuestos"},
	},
}

// RoleLabel devuelve la etiqueta del rol, o la clave si no está catalogado.
func RoleLabel(key string) string {
	if r, ok := AccountRoles[key]; ok {
		return r.Label
	}
	return key
}
