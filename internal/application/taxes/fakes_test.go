package taxes_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memJournal struct {
	mu      sync.Mutex
	entries map[string]entity.JournalEntry
}

func newMemJournal() *memJournal { return &memJournal{entries: map[string]entity.JournalEntry{}} }

func (r *memJournal) Create(_ context.Context, e *entity.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.entries[e.ID] = *e
	return nil
}

func (r *memJournal) Update(_ context.Context, id string, e *entity.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	cp.ID = id
	r.entries[id] = cp
	return nil
}

func (r *memJournal) Get(_ context.Context, id string) (*entity.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *memJournal) BulkGet(_ context.Context, ids []string) (map[string]*entity.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]*entity.JournalEntry{}
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e := e
			out[id] = &e
		}
	}
	return out, nil
}

func (r *memJournal) FindBySource(_ context.Context, module, sourceID string) (*entity.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Metadata.SourceModule == module && e.Metadata.SourceID == sourceID {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memJournal) ListByModule(_ context.Context, module string) ([]*entity.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.JournalEntry
	for _, e := range r.entries {
		if e.Metadata.SourceModule == module {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memJournal) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *memJournal) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type memObligations struct {
	mu    sync.Mutex
	byKey map[string]entity.TaxObligation
}

func newMemObligations() *memObligations {
	return &memObligations{byKey: map[string]entity.TaxObligation{}}
}

func (r *memObligations) GetByKey(_ context.Context, key string) (*entity.TaxObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memObligations) GetByID(_ context.Context, id string) (*entity.TaxObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byKey {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (r *memObligations) Upsert(_ context.Context, ob *entity.TaxObligation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byKey[ob.Key]; ok {
		ob.ID = prev.ID
	}
	r.byKey[ob.Key] = *ob
	return nil
}

func (r *memObligations) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, o := range r.byKey {
		if o.ID == id {
			o.Status = status
			r.byKey[k] = o
		}
	}
	return nil
}

func (r *memObligations) List(_ context.Context, period string) ([]entity.TaxObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TaxObligation
	for _, o := range r.byKey {
		if period == "" || o.Period == period {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *memObligations) byTax(t entity.TaxType) *entity.TaxObligation {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byKey {
		if o.TaxType == t {
			o := o
			return &o
		}
	}
	return nil
}

type memPayments struct {
	mu       sync.Mutex
	payments []entity.TaxPaymentLink
}

func (r *memPayments) Create(_ context.Context, p *entity.TaxPaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *memPayments) List(_ context.Context, period string) ([]entity.TaxPaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TaxPaymentLink
	for _, p := range r.payments {
		if period == "" || p.PeriodKey == period {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayments) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.payments[:0]
	for _, p := range r.payments {
		if p.ID != id {
			out = append(out, p)
		}
	}
	r.payments = out
	return nil
}

func (r *memPayments) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type memClosures struct {
	mu   sync.Mutex
	docs map[string]*entity.TaxClosePeriod
}

func newMemClosures() *memClosures { return &memClosures{docs: map[string]*entity.TaxClosePeriod{}} }

func (r *memClosures) Get(_ context.Context, month string, regime entity.Regime) (*entity.TaxClosePeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.docs[month+"|"+string(regime)]
	if !ok {
		return nil, nil
	}
	return cloneClosure(c), nil
}

func (r *memClosures) Save(_ context.Context, c *entity.TaxClosePeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[c.Month+"|"+string(c.Regime)] = cloneClosure(c)
	return nil
}

// cloneClosure copia profunda, como si el documento pasara por la base.
func cloneClosure(c *entity.TaxClosePeriod) *entity.TaxClosePeriod {
	cp := *c
	cp.Totals = c.Totals.Clone()
	cp.Overrides = map[entity.TaxType]entity.TotalOverride{}
	for k, v := range c.Overrides {
		cp.Overrides[k] = v
	}
	cp.EntryIDs = map[entity.TaxType]string{}
	for k, v := range c.EntryIDs {
		cp.EntryIDs[k] = v
	}
	if c.Snapshot != nil {
		s := *c.Snapshot
		s.Totals = c.Snapshot.Totals.Clone()
		s.EntryIDs = map[entity.TaxType]string{}
		for k, v := range c.Snapshot.EntryIDs {
			s.EntryIDs[k] = v
		}
		cp.Snapshot = &s
	}
	cp.Audit = append([]entity.AuditEntry(nil), c.Audit...)
	cp.Corrections = append([]entity.ManualCorrection(nil), c.Corrections...)
	cp.IIBBJurisdictions = append([]entity.JurisdictionTotal(nil), c.IIBBJurisdictions...)
	return &cp
}

type memAccounts struct{ accounts []entity.Account }

func (r *memAccounts) List(context.Context) ([]entity.Account, error) { return r.accounts, nil }

type memMappings struct{ byRole map[string]string }

func (r *memMappings) GetAccountID(_ context.Context, role string) (string, error) {
	return r.byRole[role], nil
}

func (r *memMappings) Set(_ context.Context, m entity.AccountMapping) error {
	r.byRole[m.Role] = m.AccountID
	return nil
}

func (r *memMappings) List(context.Context) ([]entity.AccountMapping, error) {
	var out []entity.AccountMapping
	for role, id := range r.byRole {
		out = append(out, entity.AccountMapping{Role: role, AccountID: id})
	}
	return out, nil
}

// memTxRunner pasa los mismos repositorios en memoria (sin rollback).
type memTxRunner struct {
	journal     *memJournal
	obligations *memObligations
	payments    *memPayments
	closures    *memClosures
}

func (r *memTxRunner) RunTax(_ context.Context, fn func(
	repository.JournalRepository,
	repository.TaxObligationRepository,
	repository.TaxPaymentRepository,
	repository.TaxClosureRepository,
) error) error {
	return fn(r.journal, r.obligations, r.payments, r.closures)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mocks y reloj
// ──────────────────────────────────────────────────────────────────────────────

type totalsMock struct{ mock.Mock }

func (m *totalsMock) GetPeriodTotals(ctx context.Context, month string) (*entity.PeriodTotals, error) {
	args := m.Called(ctx, month)
	pt, _ := args.Get(0).(*entity.PeriodTotals)
	return pt, args.Error(1)
}

type pdfMock struct{ mock.Mock }

func (m *pdfMock) GenerateClosureCertificate(ctx context.Context, data taxes.ClosureCertificateData) ([]byte, error) {
	args := m.Called(ctx, data)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de escenario
// ──────────────────────────────────────────────────────────────────────────────

const month = "2024-05"

var now = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	journal     *memJournal
	obligations *memObligations
	payments    *memPayments
	closures    *memClosures
	accounts    *memAccounts
	mappings    *memMappings
	totals      *totalsMock
	pdf         *pdfMock
	tx          *memTxRunner

	store     *taxes.ObligationStore
	closureUC *taxes.ClosureUseCase
	entryUC   *taxes.EntryUseCase
	settleUC  *taxes.SettlementUseCase
	reportUC  *taxes.ReportUseCase
	mappingUC *taxes.MappingUseCase
}

func planModelo() []entity.Account {
	return []entity.Account{
		{ID: "acc-iva-df", Code: "2.1.3.01", Name: "IVA Débito Fiscal"},
		{ID: "acc-iva-cf", Code: "1.1.4.01", Name: "IVA Crédito Fiscal"},
		{ID: "acc-iva-saf", Code: "1.1.4.04", Name: "IVA Saldo a favor"},
		{ID: "acc-iva-pagar", Code: "2.1.3.02", Name: "IVA a pagar"},
		{ID: "acc-mt-gasto", Code: "5.2.1.02", Name: "Cuota Monotributo"},
		{ID: "acc-mt-pagar", Code: "2.1.3.04", Name: "Monotributo a pagar"},
		{ID: "acc-banco", Code: "1.1.1.02", Name: "Banco Nación cuenta corriente"},
		{ID: "acc-caja", Code: "1.1.1.01", Name: "Caja"},
	}
}

func newEnv(t *testing.T, accounts []entity.Account) *env {
	t.Helper()
	e := &env{
		journal:     newMemJournal(),
		obligations: newMemObligations(),
		payments:    &memPayments{},
		closures:    newMemClosures(),
		accounts:    &memAccounts{accounts: accounts},
		mappings:    &memMappings{byRole: map[string]string{}},
		totals:      &totalsMock{},
		pdf:         &pdfMock{},
	}
	tx := &memTxRunner{journal: e.journal, obligations: e.obligations, payments: e.payments, closures: e.closures}
	e.tx = tx
	clock := fixedClock{t: now}
	policy := tax.DefaultPolicy()

	e.store = taxes.NewObligationStore(e.obligations, e.payments, e.journal, policy, clock, nil)
	e.closureUC = taxes.NewClosureUseCase(e.closures, e.journal, e.totals, e.store, policy, clock, entity.RegimeRI, nil)
	e.entryUC = taxes.NewEntryUseCase(tx, e.closures, e.journal, e.accounts, e.mappings, e.totals, policy, clock, entity.RegimeRI, nil)
	e.settleUC = taxes.NewSettlementUseCase(tx, e.closures, e.obligations, e.journal, e.accounts, e.mappings,
		e.store, nil, 0, policy, clock, entity.RegimeRI, nil)
	e.reportUC = taxes.NewReportUseCase(e.closures, e.pdf, taxes.CompanyInfo{Name: "Comercial Sur SRL", CUIT: "30712345671"},
		clock, entity.RegimeRI)
	e.mappingUC = taxes.NewMappingUseCase(e.accounts, e.mappings, clock, nil)
	return e
}

func ivaTotals(df, cf string) *entity.PeriodTotals {
	return &entity.PeriodTotals{Month: month, IVA: entity.IVATotals{DebitoFiscal: d(df), CreditoFiscal: d(cf)}}
}
