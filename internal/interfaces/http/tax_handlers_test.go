package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	apphttp "github.com/jhoicas/Impuestos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Impuestos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiMocks struct {
	closures    *closureMock
	reports     *reportMock
	entries     *entryMock
	settlements *settlementMock
	obligations *obligationsMock
	mappings    *mappingMock
}

func buildAPI(t *testing.T) (*fiber.App, *apiMocks) {
	t.Helper()
	m := &apiMocks{
		closures:    &closureMock{},
		reports:     &reportMock{},
		entries:     &entryMock{},
		settlements: &settlementMock{},
		obligations: &obligationsMock{},
		mappings:    &mappingMock{},
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:     "impuestos-api",
		Closures:    m.closures,
		Reports:     m.reports,
		Entries:     m.entries,
		Settlements: m.settlements,
		Obligations: m.obligations,
		Mappings:    m.mappings,
		JWTSecret:   testJWTSecret,
	})
	return app, m
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorBody(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Health y autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_SinToken(t *testing.T) {
	app, _ := buildAPI(t)
	resp, raw := call(t, app, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.HealthResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "impuestos-api", body.App)
}

func TestAPI_SinTokenRetorna401(t *testing.T) {
	app, m := buildAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/api/tax-closures/2024-05", "", "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	m.closures.AssertNotCalled(t, "EnsureTaxClosure", mock.Anything, mock.Anything, mock.Anything)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestGetClosure_ConsultaPuedeLeer(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("EnsureTaxClosure", mock.Anything, "2024-05", "MT").
		Return(&dto.ClosureResponse{ID: "cl-1", Month: "2024-05", Regime: "MT", Status: "OPEN"}, nil)

	resp, raw := call(t, app, http.MethodGet, "/api/tax-closures/2024-05?regime=MT", pkgjwt.RoleConsulta, "")

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var body dto.ClosureResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "cl-1", body.ID)
	assert.Equal(t, "OPEN", body.Status)
	m.closures.AssertExpectations(t)
}

func TestGetClosure_MesInvalidoRetorna400(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("EnsureTaxClosure", mock.Anything, "mayo", "").
		Return(nil, fmt.Errorf("%w: período", domain.ErrInvalidInput))

	resp, raw := call(t, app, http.MethodGet, "/api/tax-closures/mayo", pkgjwt.RoleAdmin, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorBody(t, raw).Code)
}

func TestUpdateClosure_PasaAjustesManuales(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("UpdateTaxClosure", mock.Anything, "2024-05", mock.MatchedBy(func(in dto.UpdateClosureRequest) bool {
		o, ok := in.Overrides["IVA"]
		return ok && o.Mode == "MANUAL" && o.Amount != nil && o.Amount.Equal(decimal.NewFromInt(72000)) &&
			in.OperationsReconciled != nil && *in.OperationsReconciled
	})).Return(&dto.UpdateClosureResponse{Applied: true}, nil)

	body := `{"operations_reconciled": true, "overrides": {"IVA": {"mode": "MANUAL", "amount": "72000"}}}`
	resp, raw := call(t, app, http.MethodPatch, "/api/tax-closures/2024-05", pkgjwt.RoleContador, body)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"applied":true`)
	m.closures.AssertExpectations(t)
}

func TestUpdateClosure_ModoDeAjusteInvalidoNoLlegaAlCasoDeUso(t *testing.T) {
	app, m := buildAPI(t)
	body := `{"overrides": {"IVA": {"mode": "OTRO"}}}`
	resp, raw := call(t, app, http.MethodPatch, "/api/tax-closures/2024-05", pkgjwt.RoleContador, body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorBody(t, raw).Code)
	m.closures.AssertNotCalled(t, "UpdateTaxClosure", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateClosure_JSONMalformado(t *testing.T) {
	app, _ := buildAPI(t)
	resp, _ := call(t, app, http.MethodPatch, "/api/tax-closures/2024-05", pkgjwt.RoleContador, `{"overrides": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefresh_ConsultaNoPuede(t *testing.T) {
	app, m := buildAPI(t)
	resp, _ := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/refresh", pkgjwt.RoleConsulta, "")

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	m.closures.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestClosePeriod_SoloAdminYRegistraUsuario(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("ClosePeriod", mock.Anything, "2024-05", "RI", testUserID).
		Return(&dto.ClosureResponse{ID: "cl-1", Status: "CLOSED"}, nil)

	resp, _ := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/close?regime=RI", pkgjwt.RoleContador, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/close?regime=RI", pkgjwt.RoleAdmin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"status":"CLOSED"`)
	m.closures.AssertNumberOfCalls(t, "ClosePeriod", 1)
}

func TestClosePeriod_YaCerradoRetorna409(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("ClosePeriod", mock.Anything, "2024-05", "", testUserID).Return(nil, domain.ErrPeriodAlreadyClosed)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/close", pkgjwt.RoleAdmin, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PERIOD_ALREADY_CLOSED", errorBody(t, raw).Code)
}

func TestUnlockPeriod_NoCerradoRetorna409(t *testing.T) {
	app, m := buildAPI(t)
	m.closures.On("UnlockPeriod", mock.Anything, "2024-05", "", testUserID).Return(nil, domain.ErrPeriodNotClosed)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/unlock", pkgjwt.RoleAdmin, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PERIOD_NOT_CLOSED", errorBody(t, raw).Code)
}

func TestCertificate_DevuelvePDF(t *testing.T) {
	app, m := buildAPI(t)
	m.reports.On("ClosureCertificate", mock.Anything, "2024-05", "").
		Return([]byte("%PDF-1.3 fake"), "cierre-RI-2024-05.pdf", nil)

	resp, raw := call(t, app, http.MethodGet, "/api/tax-closures/2024-05/certificate", pkgjwt.RoleConsulta, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="cierre-RI-2024-05.pdf"`)
	assert.Equal(t, "%PDF-1.3 fake", string(raw))
}

func TestCertificate_CierreInexistenteRetorna404(t *testing.T) {
	app, m := buildAPI(t)
	m.reports.On("ClosureCertificate", mock.Anything, "2024-05", "").Return(nil, "", domain.ErrNotFound)

	resp, raw := call(t, app, http.MethodGet, "/api/tax-closures/2024-05/certificate", pkgjwt.RoleConsulta, "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorBody(t, raw).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Asientos de determinación
// ──────────────────────────────────────────────────────────────────────────────

func TestEntryPreview_SinCuerpo(t *testing.T) {
	app, m := buildAPI(t)
	m.entries.On("BuildTaxEntryPreview", mock.Anything, "2024-05", "IVA", dto.EntryPreviewRequest{}).
		Return(&dto.EntryPreviewResponse{TaxType: "IVA", SourceID: "tax-determination:IVA:2024-05:RI"}, nil)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/entries/IVA/preview", pkgjwt.RoleContador, "")

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "tax-determination:IVA:2024-05:RI")
}

func TestEntryPreview_CuentaFaltanteRetorna422ConEtiqueta(t *testing.T) {
	app, m := buildAPI(t)
	m.entries.On("BuildTaxEntryPreview", mock.Anything, "2024-05", "IVA", mock.Anything).
		Return(nil, domain.MissingAccount("IVA a pagar"))

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/entries/IVA/preview", pkgjwt.RoleContador, `{"regime":"RI"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := errorBody(t, raw)
	assert.Equal(t, "MISSING_ACCOUNT", e.Code)
	assert.Equal(t, "IVA a pagar", e.Label)
}

func TestEntrySave_PeriodoCerradoRetorna409(t *testing.T) {
	app, m := buildAPI(t)
	m.entries.On("SaveTaxEntryFromPreview", mock.Anything, "2024-05", "IVA", mock.Anything).Return(nil, domain.ErrPeriodClosed)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/entries/IVA", pkgjwt.RoleContador, `{"memo":"determinación"}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PERIOD_CLOSED", errorBody(t, raw).Code)
}

func TestEntrySave_AsientoDesbalanceadoRetorna400(t *testing.T) {
	app, m := buildAPI(t)
	m.entries.On("SaveTaxEntryFromPreview", mock.Anything, "2024-05", "IVA", mock.MatchedBy(func(in dto.SaveEntryRequest) bool {
		return len(in.Lines) == 2 && in.Lines[0].Debit.Equal(decimal.NewFromInt(100))
	})).Return(nil, domain.ErrUnbalancedEntry)

	body := `{"lines":[{"account_id":"a","debit":100,"credit":0},{"account_id":"b","debit":0,"credit":90}]}`
	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/entries/IVA", pkgjwt.RoleContador, body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNBALANCED_ENTRY", errorBody(t, raw).Code)
	m.entries.AssertExpectations(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Liquidación
// ──────────────────────────────────────────────────────────────────────────────

const pagoIVA = `{"amount":"71000","method":"TRANSFERENCIA","reference":"op-1","splits":[{"account_id":"acc-banco","amount":71000}]}`

func TestRegisterSettlement_Retorna201(t *testing.T) {
	app, m := buildAPI(t)
	m.settlements.On("RegisterTaxSettlement", mock.Anything, "2024-05", "IVA|2024-05|", mock.MatchedBy(func(in dto.SettlementRequest) bool {
		return in.Amount.Equal(decimal.NewFromInt(71000)) && in.Method == "TRANSFERENCIA" &&
			len(in.Splits) == 1 && in.Splits[0].AccountID == "acc-banco"
	})).Return(&dto.SettlementResultResponse{
		EntryID:    "je-1",
		PaymentID:  "pay-1",
		Obligation: dto.SettlementObligationResponse{Status: "PAID"},
	}, nil)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/settlements/IVA%7C2024-05%7C", pkgjwt.RoleContador, pagoIVA)

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out dto.SettlementResultResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "je-1", out.EntryID)
	assert.Equal(t, "PAID", out.Obligation.Status)
	m.settlements.AssertExpectations(t)
}

func TestRegisterSettlement_SinMedioDePagoNoLlegaAlCasoDeUso(t *testing.T) {
	app, m := buildAPI(t)
	body := `{"amount":"100","splits":[{"account_id":"acc-banco","amount":100}]}`
	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/settlements/ob-1", pkgjwt.RoleContador, body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorBody(t, raw).Message, "Method")
	m.settlements.AssertNotCalled(t, "RegisterTaxSettlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterSettlement_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"obligación inexistente", domain.ErrObligationNotFound, http.StatusNotFound, "OBLIGATION_NOT_FOUND"},
		{"supera el saldo", domain.ErrExceedsRemaining, http.StatusConflict, "EXCEEDS_REMAINING"},
		{"falta referencia", domain.ErrReferenceRequired, http.StatusBadRequest, "REFERENCE_REQUIRED"},
		{"suma de cuentas", domain.ErrSplitMismatch, http.StatusBadRequest, "SPLIT_MISMATCH"},
		{"cuenta faltante", domain.MissingAccount("IVA a pagar"), http.StatusUnprocessableEntity, "MISSING_ACCOUNT"},
		{"lock vencido", fmt.Errorf("lock de obligación ob-1: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "BUSY"},
		{"error de infraestructura", errors.New("conn refused"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, m := buildAPI(t)
			m.settlements.On("RegisterTaxSettlement", mock.Anything, "2024-05", "ob-1", mock.Anything).Return(nil, tc.err)

			resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/settlements/ob-1", pkgjwt.RoleAdmin, pagoIVA)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorBody(t, raw).Code)
		})
	}
}

func TestSettlementPreview(t *testing.T) {
	app, m := buildAPI(t)
	m.settlements.On("BuildTaxSettlementEntryPreview", mock.Anything, "2024-05", "ob-1", mock.Anything).
		Return(&dto.SettlementPreviewResponse{SettlementID: "ob-1", Direction: "PAYABLE"}, nil)

	resp, raw := call(t, app, http.MethodPost, "/api/tax-closures/2024-05/settlements/ob-1/preview", pkgjwt.RoleContador, pagoIVA)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"direction":"PAYABLE"`)
	m.settlements.AssertNotCalled(t, "RegisterTaxSettlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListSettlementsYObligaciones(t *testing.T) {
	app, m := buildAPI(t)
	m.settlements.On("GetObligationsByPeriod", mock.Anything, "2024-05", "RI").
		Return([]dto.SettlementObligationResponse{{ID: "IVA|2024-05|", Status: "PENDING"}}, nil)
	m.obligations.On("ListWithPaymentSummary", mock.Anything, "2024-05").
		Return([]dto.ObligationSummaryResponse{{ID: "ob-1", Status: "PARTIAL"}, {ID: "ob-2", Status: "PAID"}}, nil)

	resp, raw := call(t, app, http.MethodGet, "/api/tax-closures/2024-05/settlements?regime=RI", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var views []dto.SettlementObligationResponse
	require.NoError(t, json.Unmarshal(raw, &views))
	assert.Len(t, views, 1)

	resp, raw = call(t, app, http.MethodGet, "/api/tax-obligations?period=2024-05", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var list []dto.ObligationSummaryResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignación de cuentas
// ──────────────────────────────────────────────────────────────────────────────

func TestAccountMappings(t *testing.T) {
	app, m := buildAPI(t)
	m.mappings.On("ListAccountRoles", mock.Anything).
		Return([]dto.AccountRoleResponse{{Role: "iva_a_pagar", Label: "IVA a pagar"}}, nil)
	m.mappings.On("SetAccountMapping", mock.Anything, "iva_a_pagar", dto.SetAccountMappingRequest{AccountID: "acc-1"}).
		Return(&dto.AccountRoleResponse{Role: "iva_a_pagar", AccountID: "acc-1"}, nil)

	resp, raw := call(t, app, http.MethodGet, "/api/account-mappings", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "iva_a_pagar")

	resp, _ = call(t, app, http.MethodPut, "/api/account-mappings/iva_a_pagar", pkgjwt.RoleContador, `{"account_id":"acc-1"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, "/api/account-mappings/iva_a_pagar", pkgjwt.RoleAdmin, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = call(t, app, http.MethodPut, "/api/account-mappings/iva_a_pagar", pkgjwt.RoleAdmin, `{"account_id":"acc-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	m.mappings.AssertNumberOfCalls(t, "SetAccountMapping", 1)
}
