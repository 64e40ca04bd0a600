package settle

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/model"
)

// mockDataSource is a testify mock of database.IDataSource for engine
// tests.
type mockDataSource struct {
	mock.Mock
}

func (m *mockDataSource) GetMerchantTransactions(ctx context.Context, merchantID string, rng model.DateRange, currencies []string) ([]*model.Transaction, error) {
	args := m.Called(ctx, merchantID, rng, currencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *mockDataSource) GetExchangeRates(ctx context.Context, currencies []string) ([]model.ExchangeRate, error) {
	args := m.Called(ctx, currencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExchangeRate), args.Error(1)
}

func (m *mockDataSource) GetMerchantFees(ctx context.Context, merchantID string, asOf model.Day) ([]*model.FeeDefinition, error) {
	args := m.Called(ctx, merchantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FeeDefinition), args.Error(1)
}

func (m *mockDataSource) GetMerchantReserveSettings(ctx context.Context, merchantID, currency string, asOf model.Day) (*model.ReserveSettings, error) {
	args := m.Called(ctx, merchantID, currency, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReserveSettings), args.Error(1)
}

func (m *mockDataSource) GetReleaseableFunds(ctx context.Context, merchantID string, asOf model.Day) ([]model.ReserveEntry, error) {
	args := m.Called(ctx, merchantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReserveEntry), args.Error(1)
}

func (m *mockDataSource) ReleaseReserveEntry(ctx context.Context, reserveID string) error {
	args := m.Called(ctx, reserveID)
	return args.Error(0)
}

func (m *mockDataSource) GetSettlementRun(ctx context.Context, settlementID string) (*model.Settlement, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *mockDataSource) BeginUnitOfWork(ctx context.Context) (database.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(database.UnitOfWork), args.Error(1)
}

// mockUnitOfWork records the writes a settlement run makes.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) LogFeeApplication(ctx context.Context, application *model.FeeApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *mockUnitOfWork) CreateReserveEntry(ctx context.Context, entry *model.ReserveEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockUnitOfWork) RecordSettlementRun(ctx context.Context, settlement *model.Settlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *mockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
