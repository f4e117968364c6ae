// Package pdf implementa la constancia de cierre de período impositivo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + CUIT  │  Período + Régimen           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Impuesto | Asiento de determinación | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Checklist del cierre                                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  AUDITORÍA: acción / fecha / usuario                         │
//	│  FOOTER: fecha de captura + fecha de emisión                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// La constancia se fecha en hora de Buenos Aires.
var argentina = time.FixedZone("ART", -3*60*60)

// ── Generator ─────────────────────────────────────────────────────────────────

// ClosureCertificateGenerator implementa taxes.ClosurePDFGenerator usando Maroto v2.
type ClosureCertificateGenerator struct{}

var _ taxes.ClosurePDFGenerator = (*ClosureCertificateGenerator)(nil)

// NewClosureCertificateGenerator construye el generador.
func NewClosureCertificateGenerator() *ClosureCertificateGenerator {
	return &ClosureCertificateGenerator{}
}

// GenerateClosureCertificate genera el PDF con la foto del cierre y devuelve sus bytes.
func (g *ClosureCertificateGenerator) GenerateClosureCertificate(_ context.Context, data taxes.ClosureCertificateData) ([]byte, error) {
	c := data.Closure
	if c == nil || c.Snapshot == nil {
		return nil, fmt.Errorf("pdf: el cierre no tiene foto")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Constancia de cierre "+c.Month, true).
		WithAuthor(nonEmpty(data.CompanyName, "impuestos-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range totalsRows(c.Snapshot) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(stepsRows(c.Steps)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(auditRows(c.Audit)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(c.Snapshot.CapturedAt, data.GeneratedAt))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data taxes.ClosureCertificateData) core.Row {
	c := data.Closure
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(data.CompanyName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CUIT: "+nonEmpty(data.CompanyCUIT, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CONSTANCIA DE CIERRE IMPOSITIVO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Período "+PeriodLabel(c.Month), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Régimen: "+regimeLabel(c.Regime), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Impuesto", 4, align.Left),
		h("Asiento de determinación", 5, align.Left),
		h("Importe", 3, align.Right),
	)
}

// totalsRows una fila por impuesto de la foto, en el orden canónico.
func totalsRows(s *entity.ClosureSnapshot) []core.Row {
	result := make([]core.Row, 0, len(s.Totals))
	for _, t := range entity.AllTaxTypes {
		amount, ok := s.Totals[t]
		if !ok {
			continue
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(t.Label(), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(s.EntryIDs[t], "—"), props.Text{
				Size: 7, Top: 1, Left: 1, Color: colorGray,
			})),
			col.New(3).Add(text.New("$"+FormatMoney(amount), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(7).Add(col.New(12).Add(
			text.New("Sin importes determinados en el período.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}
	return result
}

func stepsRows(st entity.ClosureSteps) []core.Row {
	check := func(label string, done bool) core.Row {
		mark := "[ ]"
		if done {
			mark = "[x]"
		}
		return row.New(5).Add(col.New(12).Add(
			text.New(mark+" "+label, props.Text{Size: 8, Top: 0.5, Left: 2}),
		))
	}
	return []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("CHECKLIST DEL CIERRE", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
		check("Operaciones conciliadas", st.OperationsReconciled),
		check("Conciliación bancaria realizada", st.ReconciliationDone),
		check("Asientos de determinación generados", st.EntriesGenerated),
		check("Declaraciones presentadas", st.Filed),
	}
}

func auditRows(audit []entity.AuditEntry) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("AUDITORÍA", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, a := range audit {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(auditLabel(a.Action), props.Text{Size: 8, Top: 0.5, Left: 2})),
			col.New(4).Add(text.New(a.At.In(argentina).Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 0.5})),
			col.New(5).Add(text.New(nonEmpty(a.UserID, "—"), props.Text{Size: 8, Top: 0.5, Color: colorGray})),
		))
	}
	return rows
}

func footerRow(capturedAt, generatedAt time.Time) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Cifras capturadas el %s. Constancia emitida el %s.",
			capturedAt.In(argentina).Format("02/01/2006 15:04"),
			generatedAt.In(argentina).Format("02/01/2006 15:04"),
		), props.Text{Size: 7, Color: colorGray, Top: 2}),
		text.New("Los importes corresponden a la foto tomada al cerrar el período y no cambian con recálculos posteriores.",
			props.Text{Size: 6.5, Color: colorGray, Top: 6}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func regimeLabel(r entity.Regime) string {
	switch r {
	case entity.RegimeRI:
		return "Responsable Inscripto"
	case entity.RegimeMT:
		return "Monotributo"
	}
	return string(r)
}

func auditLabel(action string) string {
	switch action {
	case entity.AuditActionClosed:
		return "Cierre"
	case entity.AuditActionUnlocked:
		return "Reapertura"
	}
	return action
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// PeriodLabel "2024-05" → "mayo 2024". Devuelve el texto tal cual si no es YYYY-MM.
func PeriodLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// FormatMoney formato argentino con dos decimales.
// Ej: 71000 → "71.000,00", -1234.5 → "-1.234,50"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if d.IsNegative() && !d.Round(2).IsZero() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	buf = append(buf, frac...)
	return string(buf)
}
