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
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyTotals accumulates one settlement run's activity for a single
// currency, in both the native and the reporting currency. A
// transaction lands in exactly one of the sales/declines/refunds
// buckets; anything that matches no bucket is counted under
// UnclassifiedCount so the drop is visible downstream.
type CurrencyTotals struct {
	Currency          string          `json:"currency"`
	Sales             decimal.Decimal `json:"total_sales"`
	SalesReporting    decimal.Decimal `json:"total_sales_reporting"`
	Declines          decimal.Decimal `json:"total_declines"`
	DeclinesReporting decimal.Decimal `json:"total_declines_reporting"`
	Refunds           decimal.Decimal `json:"total_refunds"`
	RefundsReporting  decimal.Decimal `json:"total_refunds_reporting"`
	Count             int64           `json:"transaction_count"`
	UnclassifiedCount int64           `json:"unclassified_count"`
	AverageRate       decimal.Decimal `json:"average_rate"`
}

// FeeCharge is one computed fee line in a settlement payload. The
// durable audit counterpart is FeeApplication.
type FeeCharge struct {
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
}

// Settlement is the full payload produced by one settlement run for a
// merchant and date range. Downstream formatters (report writers,
// dashboards) consume it as-is.
type Settlement struct {
	SettlementID       string                     `json:"settlement_id"`
	MerchantID         string                     `json:"merchant_id"`
	Range              DateRange                  `json:"date_range"`
	Totals             map[string]*CurrencyTotals `json:"transactions"`
	Fees               []FeeCharge                `json:"fees"`
	RollingReserve     []ReserveEntry             `json:"rolling_reserve"`
	ReleaseableReserve []ReserveEntry             `json:"releaseable_reserve"`
	GeneratedAt        time.Time                  `json:"generated_at"`
}

func (s *Settlement) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}
