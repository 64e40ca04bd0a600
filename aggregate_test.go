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
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/clearsettle/settle/model"
)

func TestAggregate_ClassifiesBuckets(t *testing.T) {
	engine := newTestEngine(nil)

	table := model.NewRateTable([]model.ExchangeRate{{
		Currency:   "USD",
		CardScheme: "VISA",
		Day:        mustDay(t, "2024-01-15"),
		BuyRate:    decimal.NewFromFloat(0.94),
		SellRate:   decimal.NewFromFloat(0.92),
	}})

	sale := saleOn(t, "USD", "VISA", "2024-01-15")
	sale.Amount = 10000 // 100.00 USD

	declined := saleOn(t, "USD", "VISA", "2024-01-15")
	declined.Amount = 5000
	declined.Status = model.StatusDeclined

	refund := saleOn(t, "USD", "VISA", "2024-01-15")
	refund.Amount = 2000
	refund.Type = model.TypeRefund

	totals := engine.Aggregate([]*model.Transaction{sale, declined, refund}, table)
	assert.Len(t, totals, 1)

	usd := totals["USD"]
	assert.True(t, usd.Sales.Equal(decimal.NewFromInt(100)), usd.Sales.String())
	assert.True(t, usd.SalesReporting.Equal(decimal.NewFromInt(92)), usd.SalesReporting.String())
	assert.True(t, usd.Declines.Equal(decimal.NewFromInt(50)))
	assert.True(t, usd.DeclinesReporting.Equal(decimal.NewFromInt(46)))
	assert.True(t, usd.Refunds.Equal(decimal.NewFromInt(20)))
	// refunds convert at the buy rate
	assert.True(t, usd.RefundsReporting.Equal(decimal.NewFromFloat(18.8)), usd.RefundsReporting.String())
	assert.Equal(t, int64(3), usd.Count)
	assert.Equal(t, int64(0), usd.UnclassifiedCount)
}

func TestAggregate_ReportingCurrencyRateIsOne(t *testing.T) {
	engine := newTestEngine(nil)

	sale := saleOn(t, "EUR", "VISA", "2024-01-15")
	sale.Amount = 460

	totals := engine.Aggregate([]*model.Transaction{sale}, model.NewRateTable(nil))
	eur := totals["EUR"]
	assert.True(t, eur.Sales.Equal(decimal.NewFromFloat(4.6)))
	assert.True(t, eur.SalesReporting.Equal(decimal.NewFromFloat(4.6)))
	assert.True(t, eur.AverageRate.Equal(decimal.NewFromInt(1)))
}

// A transaction that matches no bucket contributes nothing to the
// monetary totals but is still counted, twice: once in the overall
// count and once in the unclassified counter.
func TestAggregate_UnclassifiedCounted(t *testing.T) {
	engine := newTestEngine(nil)

	odd := saleOn(t, "EUR", "VISA", "2024-01-15")
	odd.Type = "adjustment"
	odd.Status = "SETTLED"

	totals := engine.Aggregate([]*model.Transaction{odd}, model.NewRateTable(nil))
	eur := totals["EUR"]
	assert.True(t, eur.Sales.IsZero())
	assert.True(t, eur.Refunds.IsZero())
	assert.Equal(t, int64(1), eur.Count)
	assert.Equal(t, int64(1), eur.UnclassifiedCount)
}

func TestAggregate_AverageRate(t *testing.T) {
	engine := newTestEngine(nil)

	table := model.NewRateTable([]model.ExchangeRate{
		{Currency: "USD", CardScheme: "VISA", Day: mustDay(t, "2024-01-15"), BuyRate: decimal.NewFromFloat(0.96), SellRate: decimal.NewFromFloat(0.90)},
		{Currency: "USD", CardScheme: "VISA", Day: mustDay(t, "2024-01-16"), BuyRate: decimal.NewFromFloat(0.98), SellRate: decimal.NewFromFloat(0.94)},
	})

	first := saleOn(t, "USD", "VISA", "2024-01-15")
	second := saleOn(t, "USD", "VISA", "2024-01-16")

	totals := engine.Aggregate([]*model.Transaction{first, second}, table)
	assert.True(t, totals["USD"].AverageRate.Equal(decimal.NewFromFloat(0.92)), totals["USD"].AverageRate.String())
}

// The fold is order-independent: shuffling the input must not change
// any total.
func TestAggregate_OrderIndependent(t *testing.T) {
	engine := newTestEngine(nil)

	table := model.NewRateTable([]model.ExchangeRate{
		{Currency: "USD", CardScheme: "VISA", Day: mustDay(t, "2024-01-15"), BuyRate: decimal.NewFromFloat(0.94), SellRate: decimal.NewFromFloat(0.92)},
		{Currency: "GBP", CardScheme: "MASTERCARD", Day: mustDay(t, "2024-01-15"), BuyRate: decimal.NewFromFloat(1.18), SellRate: decimal.NewFromFloat(1.15)},
	})

	transactions := []*model.Transaction{}
	currencies := []string{"USD", "GBP", "EUR"}
	schemes := []string{"VISA", "MASTERCARD"}
	types := []string{model.TypeSale, model.TypeRefund, model.TypeChargeback}
	for i := 0; i < 60; i++ {
		txn := saleOn(t, currencies[i%3], schemes[i%2], "2024-01-15")
		txn.Amount = int64(gofakeit.Number(100, 100000))
		txn.Type = types[i%3]
		transactions = append(transactions, txn)
	}

	baseline := engine.Aggregate(transactions, table)

	shuffled := append([]*model.Transaction{}, transactions...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	again := engine.Aggregate(shuffled, table)

	assert.Equal(t, len(baseline), len(again))
	for currency, want := range baseline {
		got := again[currency]
		assert.True(t, want.Sales.Equal(got.Sales), currency)
		assert.True(t, want.SalesReporting.Equal(got.SalesReporting), currency)
		assert.True(t, want.Refunds.Equal(got.Refunds), currency)
		assert.True(t, want.RefundsReporting.Equal(got.RefundsReporting), currency)
		assert.Equal(t, want.Count, got.Count, currency)
	}
}

func TestAggregate_SkipsMissingCurrency(t *testing.T) {
	engine := newTestEngine(nil)

	broken := saleOn(t, "", "VISA", "2024-01-15")

	totals := engine.Aggregate([]*model.Transaction{broken}, model.NewRateTable(nil))
	assert.Empty(t, totals)
}

// A transaction without a card scheme is a data-quality failure: it is
// skipped entirely, never routed through the any-scheme rate fallback
// into the monetary buckets.
func TestAggregate_SkipsMissingCardScheme(t *testing.T) {
	engine := newTestEngine(nil)

	table := model.NewRateTable([]model.ExchangeRate{{
		Currency:   "USD",
		CardScheme: "VISA",
		Day:        mustDay(t, "2024-01-15"),
		BuyRate:    decimal.NewFromFloat(0.94),
		SellRate:   decimal.NewFromFloat(0.92),
	}})

	schemeless := saleOn(t, "USD", "", "2024-01-15")
	schemeless.Amount = 10000

	totals := engine.Aggregate([]*model.Transaction{schemeless}, table)
	assert.Empty(t, totals)

	good := saleOn(t, "USD", "VISA", "2024-01-15")
	good.Amount = 5000

	totals = engine.Aggregate([]*model.Transaction{good, schemeless}, table)
	usd := totals["USD"]
	assert.True(t, usd.Sales.Equal(decimal.NewFromInt(50)), usd.Sales.String())
	assert.Equal(t, int64(1), usd.Count)
	assert.Equal(t, int64(0), usd.UnclassifiedCount)
}
