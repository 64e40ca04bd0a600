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
	"fmt"
	"time"

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

// GetMerchantReserveSettings retrieves the rolling-reserve configuration
// for one merchant and currency, effective on the given day. Returns nil
// with no error when the merchant has no reserve configured for that
// currency, or when the configuration only takes effect later.
func (d Datasource) GetMerchantReserveSettings(ctx context.Context, merchantID, currency string, asOf model.Day) (*model.ReserveSettings, error) {
	settings := model.ReserveSettings{}
	var effectiveFrom time.Time

	err := d.Conn.QueryRowContext(ctx, `
		SELECT merchant_id, currency, percentage, holding_days, effective_from
		FROM settle.reserve_settings
		WHERE merchant_id = $1 AND currency = $2 AND effective_from <= $3
	`, merchantID, currency, asOf.Time()).Scan(
		&settings.MerchantID,
		&settings.Currency,
		&settings.Percentage,
		&settings.HoldingDays,
		&effectiveFrom,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve reserve settings", err)
	}

	settings.EffectiveFrom = model.DayOf(effectiveFrom)
	return &settings, nil
}

// GetReleaseableFunds retrieves pending reserve entries whose release
// date is on or before asOf.
func (d Datasource) GetReleaseableFunds(ctx context.Context, merchantID string, asOf model.Day) ([]model.ReserveEntry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT reserve_id, merchant_id, original_amount, original_currency, reserve_amount, exchange_rate, hold_start_date, release_date, status, created_at
		FROM settle.reserve_entries
		WHERE merchant_id = $1 AND status = $2 AND release_date <= $3
		ORDER BY release_date ASC
	`, merchantID, model.ReserveStatusPending, asOf.Time())
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve releaseable reserves", err)
	}
	defer rows.Close()

	entries := []model.ReserveEntry{}

	for rows.Next() {
		entry := model.ReserveEntry{}
		var holdStart, release time.Time
		err = rows.Scan(
			&entry.ReserveID,
			&entry.MerchantID,
			&entry.OriginalAmount,
			&entry.OriginalCurrency,
			&entry.ReserveAmount,
			&entry.ExchangeRate,
			&holdStart,
			&release,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan reserve entry", err)
		}

		entry.HoldStartDate = model.DayOf(holdStart)
		entry.ReleaseDate = model.DayOf(release)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over reserve entries", err)
	}

	return entries, nil
}

// ReleaseReserveEntry flips one pending entry to released. Releasing an
// entry that is not pending is an error so the release job cannot pay
// the same holdback out twice.
func (d Datasource) ReleaseReserveEntry(ctx context.Context, reserveID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE settle.reserve_entries
		SET status = $1
		WHERE reserve_id = $2 AND status = $3
	`, model.ReserveStatusReleased, reserveID, model.ReserveStatusPending)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to release reserve entry", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Pending reserve entry '%s' not found", reserveID), nil)
	}

	return nil
}
