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

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/model"
)

var hundred = decimal.NewFromInt(100)

// ComputeFees applies a merchant's fee schedule to a run's totals. The
// charge basis is reporting-currency sales across all currencies, so a
// multi-currency run pays each fee once, not once per currency.
//
// Frequencies scale a fee's base amount:
//
//	per_transaction  percentage of sales, or fixed amount per transaction
//	daily            fixed amount per calendar day in the range, inclusive
//	monthly          fixed amount per month, a partial month counts whole
//	yearly, one_time flat for the run regardless of range length
//
// Only definitions effective on the first day of the range apply.
// Unknown frequencies and zero-amount charges are dropped; only charges
// that move money get a FeeCharge line and an audit record.
func (s *Settle) ComputeFees(ctx context.Context, uow database.UnitOfWork, merchantID string, totals map[string]*model.CurrencyTotals, rng model.DateRange, schedule []*model.FeeDefinition) ([]model.FeeCharge, error) {
	salesReporting := decimal.Zero
	var transactionCount int64
	for _, ct := range totals {
		salesReporting = salesReporting.Add(ct.SalesReporting)
		transactionCount += ct.Count
	}

	charges := []model.FeeCharge{}

	for _, fee := range schedule {
		if !fee.EffectiveAt(rng.Start) {
			continue
		}

		var amount decimal.Decimal
		switch fee.Frequency {
		case model.FrequencyPerTransaction:
			if fee.IsPercentage {
				amount = salesReporting.Mul(fee.Value).Div(hundred)
			} else {
				amount = fee.Value.Mul(decimal.NewFromInt(transactionCount))
			}
		case model.FrequencyDaily:
			amount = s.flatFeeAmount(fee, salesReporting).Mul(decimal.NewFromInt(int64(rng.Days())))
		case model.FrequencyMonthly:
			amount = s.flatFeeAmount(fee, salesReporting).Mul(decimal.NewFromInt(int64(rng.Months())))
		case model.FrequencyYearly, model.FrequencyOneTime:
			amount = s.flatFeeAmount(fee, salesReporting)
		default:
			s.logger.WithFields(logrus.Fields{
				"fee_id":    fee.FeeID,
				"frequency": fee.Frequency,
			}).Warn("unknown fee frequency, skipping")
			continue
		}

		if amount.IsZero() {
			continue
		}

		application := &model.FeeApplication{
			MerchantID:  merchantID,
			FeeID:       fee.FeeID,
			BaseAmount:  salesReporting,
			FeeAmount:   amount,
			AppliedDate: rng.Start,
		}
		if err := uow.LogFeeApplication(ctx, application); err != nil {
			return nil, err
		}

		charges = append(charges, model.FeeCharge{
			Type:      fee.Name,
			Amount:    amount,
			Frequency: fee.Frequency,
		})
	}

	return charges, nil
}

func (s *Settle) flatFeeAmount(fee *model.FeeDefinition, salesReporting decimal.Decimal) decimal.Decimal {
	if fee.IsPercentage {
		return salesReporting.Mul(fee.Value).Div(hundred)
	}
	return fee.Value
}
