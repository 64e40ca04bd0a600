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
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/model"
)

// ComputeReserves creates one rolling-reserve holdback per currency that
// produced sales, for merchants with reserve settings in that currency
// effective on the first day of the range. The holdback is a percentage
// of reporting-currency sales; the hold starts at the beginning of the
// range and the release date is the holding period counted from its
// end. Currencies are walked in sorted order so the entries come out
// deterministic.
func (s *Settle) ComputeReserves(ctx context.Context, uow database.UnitOfWork, merchantID string, totals map[string]*model.CurrencyTotals, rng model.DateRange) ([]model.ReserveEntry, error) {
	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	entries := []model.ReserveEntry{}

	for _, currency := range currencies {
		ct := totals[currency]
		if ct.SalesReporting.IsZero() {
			continue
		}

		settings, err := s.datasource.GetMerchantReserveSettings(ctx, merchantID, currency, rng.Start)
		if err != nil {
			return nil, err
		}
		if settings == nil {
			continue
		}

		reserveAmount := ct.SalesReporting.Mul(settings.Percentage).Div(hundred)
		if reserveAmount.IsZero() {
			continue
		}

		entry := model.ReserveEntry{
			MerchantID:       merchantID,
			OriginalAmount:   ct.Sales,
			OriginalCurrency: currency,
			ReserveAmount:    reserveAmount,
			ExchangeRate:     ct.AverageRate,
			HoldStartDate:    rng.Start,
			ReleaseDate:      rng.End.AddDays(settings.HoldingDays),
		}
		if err := uow.CreateReserveEntry(ctx, &entry); err != nil {
			return nil, err
		}

		s.logger.WithFields(logrus.Fields{
			"merchant_id":    merchantID,
			"currency":       currency,
			"reserve_amount": reserveAmount.String(),
			"release_date":   entry.ReleaseDate.String(),
		}).Info("rolling reserve held")

		entries = append(entries, entry)
	}

	return entries, nil
}

// GetReleaseableReserves returns the pending reserve entries whose
// holding period has elapsed as of the given day.
func (s *Settle) GetReleaseableReserves(ctx context.Context, merchantID string, asOf model.Day) ([]model.ReserveEntry, error) {
	return s.datasource.GetReleaseableFunds(ctx, merchantID, asOf)
}

// ReleaseMaturedReserves flips every matured pending entry to released
// and returns how many were released. Entries are released one by one;
// an error leaves earlier releases in place, which is safe because each
// release is idempotent at the row level.
func (s *Settle) ReleaseMaturedReserves(ctx context.Context, merchantID string, asOf model.Day) (int, error) {
	entries, err := s.datasource.GetReleaseableFunds(ctx, merchantID, asOf)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, entry := range entries {
		if err := s.datasource.ReleaseReserveEntry(ctx, entry.ReserveID); err != nil {
			return released, err
		}
		released++
	}

	if released > 0 {
		s.logger.WithFields(logrus.Fields{
			"merchant_id": merchantID,
			"released":    released,
			"as_of":       asOf.String(),
		}).Info("matured reserves released")
	}

	return released, nil
}
