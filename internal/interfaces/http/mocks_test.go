package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
)

type closureMock struct{ mock.Mock }

func (m *closureMock) EnsureTaxClosure(ctx context.Context, month, regime string) (*dto.ClosureResponse, error) {
	args := m.Called(ctx, month, regime)
	out, _ := args.Get(0).(*dto.ClosureResponse)
	return out, args.Error(1)
}

func (m *closureMock) UpdateTaxClosure(ctx context.Context, month string, in dto.UpdateClosureRequest) (*dto.UpdateClosureResponse, error) {
	args := m.Called(ctx, month, in)
	out, _ := args.Get(0).(*dto.UpdateClosureResponse)
	return out, args.Error(1)
}

func (m *closureMock) Refresh(ctx context.Context, month, regime string) (*dto.UpdateClosureResponse, error) {
	args := m.Called(ctx, month, regime)
	out, _ := args.Get(0).(*dto.UpdateClosureResponse)
	return out, args.Error(1)
}

func (m *closureMock) ClosePeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error) {
	args := m.Called(ctx, month, regime, userID)
	out, _ := args.Get(0).(*dto.ClosureResponse)
	return out, args.Error(1)
}

func (m *closureMock) UnlockPeriod(ctx context.Context, month, regime, userID string) (*dto.ClosureResponse, error) {
	args := m.Called(ctx, month, regime, userID)
	out, _ := args.Get(0).(*dto.ClosureResponse)
	return out, args.Error(1)
}

type reportMock struct{ mock.Mock }

func (m *reportMock) ClosureCertificate(ctx context.Context, month, regime string) ([]byte, string, error) {
	args := m.Called(ctx, month, regime)
	out, _ := args.Get(0).([]byte)
	return out, args.String(1), args.Error(2)
}

type entryMock struct{ mock.Mock }

func (m *entryMock) BuildTaxEntryPreview(ctx context.Context, month, rawTax string, in dto.EntryPreviewRequest) (*dto.EntryPreviewResponse, error) {
	args := m.Called(ctx, month, rawTax, in)
	out, _ := args.Get(0).(*dto.EntryPreviewResponse)
	return out, args.Error(1)
}

func (m *entryMock) SaveTaxEntryFromPreview(ctx context.Context, month, rawTax string, in dto.SaveEntryRequest) (*dto.EntryPreviewResponse, error) {
	args := m.Called(ctx, month, rawTax, in)
	out, _ := args.Get(0).(*dto.EntryPreviewResponse)
	return out, args.Error(1)
}

type settlementMock struct{ mock.Mock }

func (m *settlementMock) GetObligationsByPeriod(ctx context.Context, month, regime string) ([]dto.SettlementObligationResponse, error) {
	args := m.Called(ctx, month, regime)
	out, _ := args.Get(0).([]dto.SettlementObligationResponse)
	return out, args.Error(1)
}

func (m *settlementMock) BuildTaxSettlementEntryPreview(ctx context.Context, month, id string, in dto.SettlementRequest) (*dto.SettlementPreviewResponse, error) {
	args := m.Called(ctx, month, id, in)
	out, _ := args.Get(0).(*dto.SettlementPreviewResponse)
	return out, args.Error(1)
}

func (m *settlementMock) RegisterTaxSettlement(ctx context.Context, month, id string, in dto.SettlementRequest) (*dto.SettlementResultResponse, error) {
	args := m.Called(ctx, month, id, in)
	out, _ := args.Get(0).(*dto.SettlementResultResponse)
	return out, args.Error(1)
}

type obligationsMock struct{ mock.Mock }

func (m *obligationsMock) ListWithPaymentSummary(ctx context.Context, period string) ([]dto.ObligationSummaryResponse, error) {
	args := m.Called(ctx, period)
	out, _ := args.Get(0).([]dto.ObligationSummaryResponse)
	return out, args.Error(1)
}

type mappingMock struct{ mock.Mock }

func (m *mappingMock) ListAccountRoles(ctx context.Context) ([]dto.AccountRoleResponse, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]dto.AccountRoleResponse)
	return out, args.Error(1)
}

func (m *mappingMock) SetAccountMapping(ctx context.Context, role string, in dto.SetAccountMappingRequest) (*dto.AccountRoleResponse, error) {
	args := m.Called(ctx, role, in)
	out, _ := args.Get(0).(*dto.AccountRoleResponse)
	return out, args.Error(1)
}
