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

package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateSide selects which side of a quoted pair applies to a conversion.
type RateSide string

const (
	SideBuy  RateSide = "BUY"
	SideSell RateSide = "SELL"
)

// ExchangeRate is one daily quote for converting a currency into the
// reporting currency, scoped to a card scheme.
type ExchangeRate struct {
	RateID     string          `json:"rate_id"`
	Currency   string          `json:"currency"`
	CardScheme string          `json:"card_scheme"`
	Day        Day             `json:"day"`
	BuyRate    decimal.Decimal `json:"buy_rate"`
	SellRate   decimal.Decimal `json:"sell_rate"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RateKey is the composite lookup key for a rate table entry. Card
// schemes are uppercased on the way in so lookups are case-insensitive.
type RateKey struct {
	Side     RateSide
	Currency string
	Scheme   string
	Day      Day
}

// NewRateKey normalizes the scheme casing and builds a key.
func NewRateKey(side RateSide, currency, scheme string, day Day) RateKey {
	return RateKey{
		Side:     side,
		Currency: currency,
		Scheme:   strings.ToUpper(scheme),
		Day:      day,
	}
}

// RateTable is an in-memory index over a bulk-fetched set of exchange
// rates, keyed for O(1) exact lookups with linear fallback scans.
type RateTable struct {
	rates map[RateKey]decimal.Decimal
}

// NewRateTable indexes a slice of quotes. Each quote contributes one
// BUY and one SELL entry.
func NewRateTable(quotes []ExchangeRate) *RateTable {
	t := &RateTable{rates: make(map[RateKey]decimal.Decimal, len(quotes)*2)}
	for _, q := range quotes {
		t.Add(q)
	}
	return t
}

// Add indexes a single quote.
func (t *RateTable) Add(quote ExchangeRate) {
	t.rates[NewRateKey(SideBuy, quote.Currency, quote.CardScheme, quote.Day)] = quote.BuyRate
	t.rates[NewRateKey(SideSell, quote.Currency, quote.CardScheme, quote.Day)] = quote.SellRate
}

// Len returns the number of indexed entries.
func (t *RateTable) Len() int {
	return len(t.rates)
}

// Get returns the rate for an exact key match.
func (t *RateTable) Get(key RateKey) (decimal.Decimal, bool) {
	rate, ok := t.rates[key]
	return rate, ok
}

// AnyScheme scans for a rate matching side, currency and day under any
// card scheme. First match wins.
func (t *RateTable) AnyScheme(side RateSide, currency string, day Day) (decimal.Decimal, bool) {
	for key, rate := range t.rates {
		if key.Side == side && key.Currency == currency && key.Day == day {
			return rate, true
		}
	}
	return decimal.Decimal{}, false
}

// AnyDay scans for a rate matching side and currency on any day and
// any card scheme. First match wins.
func (t *RateTable) AnyDay(side RateSide, currency string) (decimal.Decimal, bool) {
	for key, rate := range t.rates {
		if key.Side == side && key.Currency == currency {
			return rate, true
		}
	}
	return decimal.Decimal{}, false
}
