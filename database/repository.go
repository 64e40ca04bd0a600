/*
Copyright 2024 ClearSettle Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/clearsettle/settle/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	transaction  // Interface for acquiring-transaction reads
	exchangerate // Interface for exchange-rate reads
	fee          // Interface for fee-schedule reads
	reserve      // Interface for rolling-reserve operations
	settlement   // Interface for settlement-run reads

	// BeginUnitOfWork opens the transactional boundary for one
	// settlement run's writes. Either every write inside it commits or
	// none do.
	BeginUnitOfWork(ctx context.Context) (UnitOfWork, error)
}

// transaction defines methods for reading acquiring transactions. The
// engine never writes to this table.
type transaction interface {
	GetMerchantTransactions(ctx context.Context, merchantID string, rng model.DateRange, currencies []string) ([]*model.Transaction, error) // Retrieves a merchant's transactions inside a date range, optionally restricted to currencies
}

// exchangerate defines methods for reading daily exchange-rate quotes.
type exchangerate interface {
	GetExchangeRates(ctx context.Context, currencies []string) ([]model.ExchangeRate, error) // Retrieves all quotes for the given currencies
}

// fee defines methods for reading merchant fee schedules.
type fee interface {
	GetMerchantFees(ctx context.Context, merchantID string, asOf model.Day) ([]*model.FeeDefinition, error) // Retrieves fee definitions effective on a day
}

// reserve defines methods for rolling-reserve settings and entries.
type reserve interface {
	GetMerchantReserveSettings(ctx context.Context, merchantID, currency string, asOf model.Day) (*model.ReserveSettings, error) // Retrieves reserve settings effective on a day, nil when none configured
	GetReleaseableFunds(ctx context.Context, merchantID string, asOf model.Day) ([]model.ReserveEntry, error)    // Retrieves pending entries whose release date has passed
	ReleaseReserveEntry(ctx context.Context, reserveID string) error                                             // Flips one pending entry to released
}

// settlement defines methods for reading stored settlement runs.
type settlement interface {
	GetSettlementRun(ctx context.Context, settlementID string) (*model.Settlement, error) // Retrieves one stored run by ID
}

// UnitOfWork is the write side of a settlement run. All writes share one
// database transaction; Commit and Rollback end it.
type UnitOfWork interface {
	LogFeeApplication(ctx context.Context, application *model.FeeApplication) error
	CreateReserveEntry(ctx context.Context, entry *model.ReserveEntry) error
	RecordSettlementRun(ctx context.Context, settlement *model.Settlement) error
	Commit() error
	Rollback() error
}
