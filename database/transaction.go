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
	"encoding/json"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

// GetMerchantTransactions retrieves every transaction for a merchant
// whose timestamp falls inside the range, optionally restricted to a
// set of currencies. The upper bound is the day after range end so the
// range stays inclusive of its last day.
func (d Datasource) GetMerchantTransactions(ctx context.Context, merchantID string, rng model.DateRange, currencies []string) ([]*model.Transaction, error) {
	ctx, span := otel.Tracer("settlement.database").Start(ctx, "Fetching merchant transactions")
	defer span.End()

	query := `
		SELECT id, transaction_id, merchant_id, amount, currency, card_scheme, type, status, created_at, meta_data
		FROM settle.transactions
		WHERE merchant_id = $1 AND created_at >= $2 AND created_at < $3`
	args := []interface{}{merchantID, rng.Start.Time(), rng.End.AddDays(1).Time()}
	if len(currencies) > 0 {
		query += ` AND currency = ANY($4)`
		args = append(args, pq.Array(currencies))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	transactions := []*model.Transaction{}

	for rows.Next() {
		transaction := model.Transaction{}
		var metaDataJSON []byte
		err = rows.Scan(
			&transaction.ID,
			&transaction.TransactionID,
			&transaction.MerchantID,
			&transaction.Amount,
			&transaction.Currency,
			&transaction.CardScheme,
			&transaction.Type,
			&transaction.Status,
			&transaction.CreatedAt,
			&metaDataJSON,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction data", err)
		}

		if len(metaDataJSON) > 0 {
			err = json.Unmarshal(metaDataJSON, &transaction.MetaData)
			if err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}

		transactions = append(transactions, &transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over transactions", err)
	}

	return transactions, nil
}
