package taxes_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

func TestBuildTaxEntryPreview_IVA(t *testing.T) {
	e := newEnv(t, planModelo())
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)

	prev, err := e.entryUC.BuildTaxEntryPreview(context.Background(), month, "iva", dto.EntryPreviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "IVA", prev.TaxType)
	assert.Equal(t, "tax-determination:IVA:2024-05:RI", prev.SourceID)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), prev.Date)
	assert.Empty(t, prev.EntryID)
	assert.True(t, d("121000").Equal(prev.TotalDebit))
	assert.True(t, prev.TotalDebit.Equal(prev.TotalCredit))

	byAccount := map[string]dto.EntryLineDTO{}
	for _, l := range prev.Lines {
		byAccount[l.AccountID] = l
	}
	assert.True(t, d("121000").Equal(byAccount["acc-iva-df"].Debit))
	assert.True(t, d("50000").Equal(byAccount["acc-iva-cf"].Credit))
	assert.True(t, d("71000").Equal(byAccount["acc-iva-pagar"].Credit))
	assert.Equal(t, "IVA a pagar", byAccount["acc-iva-pagar"].AccountName)
	assert.Zero(t, e.journal.count())
}

func TestBuildTaxEntryPreview_NoAplicable(t *testing.T) {
	e := newEnv(t, planModelo())
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)
	ctx := context.Background()

	_, err := e.entryUC.BuildTaxEntryPreview(ctx, month, "RET_DEPOSITAR", dto.EntryPreviewRequest{})
	require.ErrorIs(t, err, domain.ErrDeterminationNotApplicable)

	_, err = e.entryUC.BuildTaxEntryPreview(ctx, month, "IVA", dto.EntryPreviewRequest{Regime: "MT"})
	require.ErrorIs(t, err, domain.ErrDeterminationNotApplicable)

	_, err = e.entryUC.BuildTaxEntryPreview(ctx, month, "GANANCIAS", dto.EntryPreviewRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildTaxEntryPreview_FaltaCuenta(t *testing.T) {
	e := newEnv(t, []entity.Account{{ID: "acc-banco", Code: "1.1.1.02", Name: "Banco"}})
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)

	_, err := e.entryUC.BuildTaxEntryPreview(context.Background(), month, "IVA", dto.EntryPreviewRequest{})
	require.ErrorIs(t, err, domain.ErrMissingAccount)
}

func TestBuildTaxEntryPreview_CuentaAsignada(t *testing.T) {
	plan := append(planModelo(), entity.Account{ID: "acc-posicion", Code: "2.9.9.01", Name: "Posición mensual"})
	e := newEnv(t, plan)
	e.mappings.byRole["iva_a_pagar"] = "acc-posicion"
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)

	prev, err := e.entryUC.BuildTaxEntryPreview(context.Background(), month, "IVA", dto.EntryPreviewRequest{})
	require.NoError(t, err)
	ids := make([]string, 0, len(prev.Lines))
	for _, l := range prev.Lines {
		ids = append(ids, l.AccountID)
	}
	assert.Contains(t, ids, "acc-posicion")
	assert.NotContains(t, ids, "acc-iva-pagar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardado idempotente
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveTaxEntryFromPreview_Idempotente(t *testing.T) {
	e := newEnv(t, planModelo())
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)
	e.refresh(t, "")
	ctx := context.Background()

	got, err := e.closureUC.GetTaxClosure(ctx, month, "")
	require.NoError(t, err)
	assert.False(t, got.Steps.EntriesGenerated)

	first, err := e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, first.EntryID)

	second, err := e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{Memo: "Determinación IVA mayo"})
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, 1, e.journal.count())

	stored, err := e.journal.Get(ctx, first.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "Determinación IVA mayo", stored.Memo)
	require.NotNil(t, stored.Metadata.Tag)
	assert.Equal(t, entity.EntryKindDetermination, stored.Metadata.Tag.Kind)

	got, err = e.closureUC.GetTaxClosure(ctx, month, "")
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, got.EntryIDs["IVA"])
	assert.True(t, got.Steps.EntriesGenerated)

	// la liquidación queda vinculada al asiento de origen
	vs := e.views(t, "")
	require.Len(t, vs, 1)
	assert.Equal(t, first.EntryID, vs[0].SourceTaxEntryID)
}

func TestSaveTaxEntryFromPreview_MigraAsientoHeredado(t *testing.T) {
	e := newEnv(t, planModelo())
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(ivaTotals("121000", "50000"), nil)
	ctx := context.Background()
	require.NoError(t, e.journal.Create(ctx, &entity.JournalEntry{
		ID:       "legacy-1",
		Date:     time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		Memo:     "IVA mayo",
		Metadata: entity.EntryMetadata{SourceModule: "taxes", SourceID: "impuestos-iva-2024-05"},
	}))

	out, err := e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{})
	require.NoError(t, err)
	assert.Equal(t, "legacy-1", out.EntryID)
	assert.Equal(t, 1, e.journal.count())

	stored, err := e.journal.Get(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, "tax-determination:IVA:2024-05:RI", stored.Metadata.SourceID)
	require.NotNil(t, stored.Metadata.Tag)
	assert.Equal(t, month, stored.Metadata.Tag.Period)
}

func TestSaveTaxEntryFromPreview_RenglonesEditados(t *testing.T) {
	e := newEnv(t, planModelo())
	ctx := context.Background()

	_, err := e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{Lines: []dto.EntryLineDTO{
		{AccountID: "acc-iva-df", Debit: d("100")},
		{AccountID: "acc-inexistente", Credit: d("100")},
	}})
	require.ErrorIs(t, err, domain.ErrInvalidAccount)

	_, err = e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{Lines: []dto.EntryLineDTO{
		{AccountID: "acc-iva-df", Debit: d("100")},
		{AccountID: "acc-iva-pagar", Credit: d("90")},
	}})
	require.ErrorIs(t, err, domain.ErrUnbalancedEntry)
	assert.Zero(t, e.journal.count())

	out, err := e.entryUC.SaveTaxEntryFromPreview(ctx, month, "IVA", dto.SaveEntryRequest{Lines: []dto.EntryLineDTO{
		{AccountID: "acc-iva-df", Debit: d("100")},
		{AccountID: "acc-iva-pagar", Credit: d("100")},
	}})
	require.NoError(t, err)
	assert.Len(t, out.Lines, 2)
	assert.Equal(t, 1, e.journal.count())
	e.totals.AssertNotCalled(t, "GetPeriodTotals", mock.Anything, mock.Anything)
}

func TestSaveTaxEntryFromPreview_SinImportes(t *testing.T) {
	e := newEnv(t, planModelo())
	e.totals.On("GetPeriodTotals", mock.Anything, month).Return(&entity.PeriodTotals{Month: month}, nil)

	_, err := e.entryUC.SaveTaxEntryFromPreview(context.Background(), month, "IVA", dto.SaveEntryRequest{})
	require.ErrorIs(t, err, domain.ErrNothingToDetermine)
	assert.Zero(t, e.journal.count())
}
