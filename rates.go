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

package settle

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/clearsettle/settle/model"
)

var one = decimal.NewFromInt(1)

// ResolveRate finds the conversion rate into the reporting currency for
// one transaction. Reversals take the buy side, everything else the
// sell side. Resolution degrades through three fallback tiers before
// giving up and converting at 1.0:
//
//  1. exact side, currency, scheme and day
//  2. same day, any scheme
//  3. any day, any scheme
//
// The neutral fallback keeps the run total-preserving but is logged at
// warn level because it means the rate feed has a hole.
func (s *Settle) ResolveRate(table *model.RateTable, transaction *model.Transaction) decimal.Decimal {
	if transaction.Currency == s.reporting {
		return one
	}

	side := model.SideSell
	if transaction.IsReversal() {
		side = model.SideBuy
	}
	day := transaction.Day()

	if table != nil {
		if rate, ok := table.Get(model.NewRateKey(side, transaction.Currency, transaction.CardScheme, day)); ok {
			return rate
		}
		if rate, ok := table.AnyScheme(side, transaction.Currency, day); ok {
			s.logger.WithFields(logrus.Fields{
				"transaction_id": transaction.TransactionID,
				"currency":       transaction.Currency,
				"card_scheme":    transaction.CardScheme,
			}).Debug("no scheme-exact rate, using same-day rate from another scheme")
			return rate
		}
		if rate, ok := table.AnyDay(side, transaction.Currency); ok {
			s.logger.WithFields(logrus.Fields{
				"transaction_id": transaction.TransactionID,
				"currency":       transaction.Currency,
				"day":            day.String(),
			}).Debug("no same-day rate, using rate from another day")
			return rate
		}
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.TransactionID,
		"currency":       transaction.Currency,
		"day":            day.String(),
	}).Warn("no rate found for currency, converting at 1.0")
	return one
}

// fetchRateTable loads and indexes every quote for the run's
// currencies, going through the rate cache when one is configured.
// Cached rows are stored as JSON bytes.
func (s *Settle) fetchRateTable(ctx context.Context, currencies []string) (*model.RateTable, error) {
	if len(currencies) == 0 {
		return model.NewRateTable(nil), nil
	}

	sorted := append([]string{}, currencies...)
	sort.Strings(sorted)
	key := "rates:" + strings.Join(sorted, ",")

	if s.cache != nil {
		var raw []byte
		if err := s.cache.Get(ctx, key, &raw); err != nil {
			s.logger.WithError(err).Warn("rate cache read failed")
		} else if len(raw) > 0 {
			var quotes []model.ExchangeRate
			if err := json.Unmarshal(raw, &quotes); err != nil {
				s.logger.WithError(err).Warn("discarding corrupt cached rates")
			} else {
				return model.NewRateTable(quotes), nil
			}
		}
	}

	quotes, err := s.datasource.GetExchangeRates(ctx, sorted)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(quotes); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.rateTTL); err != nil {
				s.logger.WithError(err).Warn("rate cache write failed")
			}
		}
	}

	return model.NewRateTable(quotes), nil
}
