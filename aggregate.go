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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/clearsettle/settle/model"
)

var minorUnits = decimal.NewFromInt(100)

// Aggregate folds a run's transactions into per-currency totals. Each
// transaction lands in exactly one bucket: approved sales, declined
// sales, or reversals. Anything else only bumps the currency's
// unclassified counter, so dropped volume stays visible without
// polluting the monetary totals. Amounts arrive in minor units and are
// converted to majors before any arithmetic.
//
// The fold is commutative, so the totals do not depend on transaction
// order.
func (s *Settle) Aggregate(transactions []*model.Transaction, table *model.RateTable) map[string]*model.CurrencyTotals {
	totals := make(map[string]*model.CurrencyTotals)
	rateSums := make(map[string]decimal.Decimal)
	rateCounts := make(map[string]int64)

	for _, transaction := range transactions {
		currency := transaction.Currency
		if currency == "" {
			s.logger.WithField("transaction_id", transaction.TransactionID).
				Error("transaction has no currency, skipping")
			continue
		}
		if transaction.CardScheme == "" {
			s.logger.WithFields(logrus.Fields{
				"transaction_id": transaction.TransactionID,
				"currency":       currency,
			}).Error("transaction has no card scheme, skipping")
			continue
		}

		ct, ok := totals[currency]
		if !ok {
			ct = &model.CurrencyTotals{Currency: currency}
			totals[currency] = ct
		}
		ct.Count++

		amount := decimal.NewFromInt(transaction.Amount).Div(minorUnits)
		rate := s.ResolveRate(table, transaction)
		reporting := amount.Mul(rate)

		switch {
		case transaction.Type == model.TypeSale && transaction.Status == model.StatusApproved:
			ct.Sales = ct.Sales.Add(amount)
			ct.SalesReporting = ct.SalesReporting.Add(reporting)
		case transaction.Type == model.TypeSale && transaction.Status == model.StatusDeclined:
			ct.Declines = ct.Declines.Add(amount)
			ct.DeclinesReporting = ct.DeclinesReporting.Add(reporting)
		case transaction.IsReversal():
			ct.Refunds = ct.Refunds.Add(amount)
			ct.RefundsReporting = ct.RefundsReporting.Add(reporting)
		default:
			ct.UnclassifiedCount++
			s.logger.WithFields(logrus.Fields{
				"transaction_id": transaction.TransactionID,
				"type":           transaction.Type,
				"status":         transaction.Status,
			}).Warn("transaction matched no settlement bucket")
			continue
		}

		rateSums[currency] = rateSums[currency].Add(rate)
		rateCounts[currency]++
	}

	for currency, ct := range totals {
		if currency == s.reporting {
			ct.AverageRate = one
			continue
		}
		if rateCounts[currency] > 0 {
			ct.AverageRate = rateSums[currency].Div(decimal.NewFromInt(rateCounts[currency]))
		}
	}

	return totals
}
