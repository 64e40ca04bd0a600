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
	"time"

	"github.com/shopspring/decimal"
)

// Reserve entry statuses. The transition is one-way: pending entries
// become released once their holding period has elapsed and a release
// job picks them up.
const (
	ReserveStatusPending  = "pending"
	ReserveStatusReleased = "released"
)

// ReserveSettings is a merchant's rolling-reserve configuration for one
// currency. Read-only input to the engine.
type ReserveSettings struct {
	MerchantID    string          `json:"merchant_id"`
	Currency      string          `json:"currency"`
	Percentage    decimal.Decimal `json:"percentage"`
	HoldingDays   int             `json:"holding_days"`
	EffectiveFrom Day             `json:"effective_from"`
}

// ReserveEntry is one rolling-reserve holdback created by a settlement
// run. OriginalAmount/OriginalCurrency record the native sales the
// holdback was taken from; ReserveAmount is in the reporting currency.
type ReserveEntry struct {
	ReserveID        string          `json:"reserve_id"`
	MerchantID       string          `json:"merchant_id"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	OriginalCurrency string          `json:"original_currency"`
	ReserveAmount    decimal.Decimal `json:"reserve_amount"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	HoldStartDate    Day             `json:"hold_start_date"`
	ReleaseDate      Day             `json:"release_date"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Releaseable reports whether the entry is eligible for payout as of
// the given day.
func (e *ReserveEntry) Releaseable(asOf Day) bool {
	return e.Status == ReserveStatusPending && !e.ReleaseDate.After(asOf)
}
