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

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

// GetMerchantFees retrieves the fee definitions effective for the
// merchant on the given day. Open-ended definitions have a NULL
// effective_to.
func (d Datasource) GetMerchantFees(ctx context.Context, merchantID string, asOf model.Day) ([]*model.FeeDefinition, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT fee_id, merchant_id, name, frequency, is_percentage, value, effective_from, effective_to
		FROM settle.fee_definitions
		WHERE merchant_id = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY fee_id ASC
	`, merchantID, asOf.Time())
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve fee definitions", err)
	}
	defer rows.Close()

	fees := []*model.FeeDefinition{}

	for rows.Next() {
		fee := model.FeeDefinition{}
		var effectiveFrom time.Time
		var effectiveTo sql.NullTime
		err = rows.Scan(
			&fee.FeeID,
			&fee.MerchantID,
			&fee.Name,
			&fee.Frequency,
			&fee.IsPercentage,
			&fee.Value,
			&effectiveFrom,
			&effectiveTo,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan fee definition", err)
		}

		fee.EffectiveFrom = model.DayOf(effectiveFrom)
		if effectiveTo.Valid {
			fee.EffectiveTo = model.DayOf(effectiveTo.Time)
		}

		fees = append(fees, &fee)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over fee definitions", err)
	}

	return fees, nil
}
