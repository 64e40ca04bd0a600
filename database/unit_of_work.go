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
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

type sqlUnitOfWork struct {
	tx *sql.Tx
}

// BeginUnitOfWork opens one database transaction for a settlement run's
// writes.
func (d Datasource) BeginUnitOfWork(ctx context.Context) (UnitOfWork, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin settlement transaction", err)
	}
	return &sqlUnitOfWork{tx: tx}, nil
}

// LogFeeApplication appends one fee audit record. Assigns the
// application ID and timestamp.
func (u *sqlUnitOfWork) LogFeeApplication(ctx context.Context, application *model.FeeApplication) error {
	application.ApplicationID = model.GenerateUUIDWithSuffix("fee")
	application.CreatedAt = time.Now()

	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO settle.fee_applications (application_id, merchant_id, fee_id, base_amount, fee_amount, applied_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, application.ApplicationID, application.MerchantID, application.FeeID,
		application.BaseAmount, application.FeeAmount, application.AppliedDate.Time(), application.CreatedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to log fee application", err)
	}

	return nil
}

// CreateReserveEntry inserts one rolling-reserve holdback as pending.
// Assigns the reserve ID and timestamp.
func (u *sqlUnitOfWork) CreateReserveEntry(ctx context.Context, entry *model.ReserveEntry) error {
	entry.ReserveID = model.GenerateUUIDWithSuffix("rsv")
	entry.Status = model.ReserveStatusPending
	entry.CreatedAt = time.Now()

	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO settle.reserve_entries (reserve_id, merchant_id, original_amount, original_currency, reserve_amount, exchange_rate, hold_start_date, release_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ReserveID, entry.MerchantID, entry.OriginalAmount, entry.OriginalCurrency,
		entry.ReserveAmount, entry.ExchangeRate, entry.HoldStartDate.Time(), entry.ReleaseDate.Time(),
		entry.Status, entry.CreatedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create reserve entry", err)
	}

	return nil
}

// RecordSettlementRun stores the full settlement payload. The unique
// index on (merchant_id, range_start, range_end) is the dedup safeguard
// against generating the same run twice.
func (u *sqlUnitOfWork) RecordSettlementRun(ctx context.Context, settlement *model.Settlement) error {
	payload, err := settlement.ToJSON()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal settlement payload", err)
	}

	_, err = u.tx.ExecContext(ctx, `
		INSERT INTO settle.settlement_runs (settlement_id, merchant_id, range_start, range_end, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, settlement.SettlementID, settlement.MerchantID,
		settlement.Range.Start.Time(), settlement.Range.End.Time(), payload, settlement.GeneratedAt)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return apierror.NewAPIError(apierror.ErrConflict, "Settlement already generated for this merchant and range", err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record settlement run", err)
	}

	return nil
}

func (u *sqlUnitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit settlement transaction", err)
	}
	return nil
}

// Rollback discards the run's writes. A rollback after a successful
// commit is a no-op error that callers may ignore.
func (u *sqlUnitOfWork) Rollback() error {
	err := u.tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to roll back settlement transaction", err)
	}
	return nil
}
