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
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

// GetExchangeRates retrieves every quote for the given currencies, all
// days and schemes. The resolver needs off-day quotes for its fallback
// tiers, so the query is not bounded to the run's range. Transient
// failures are retried because the rate table is on the critical path of
// every run.
func (d Datasource) GetExchangeRates(ctx context.Context, currencies []string) ([]model.ExchangeRate, error) {
	var quotes []model.ExchangeRate

	operation := func() error {
		rows, err := d.Conn.QueryContext(ctx, `
			SELECT rate_id, currency, card_scheme, day, buy_rate, sell_rate, created_at
			FROM settle.exchange_rates
			WHERE currency = ANY($1)
			ORDER BY day ASC
		`, pq.Array(currencies))
		if err != nil {
			return err
		}
		defer rows.Close()

		quotes = quotes[:0]
		for rows.Next() {
			var quote model.ExchangeRate
			var day time.Time
			err = rows.Scan(
				&quote.RateID,
				&quote.Currency,
				&quote.CardScheme,
				&day,
				&quote.BuyRate,
				&quote.SellRate,
				&quote.CreatedAt,
			)
			if err != nil {
				return backoff.Permanent(err)
			}
			quote.Day = model.DayOf(day)
			quotes = append(quotes, quote)
		}
		return rows.Err()
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve exchange rates", err)
	}

	return quotes, nil
}
