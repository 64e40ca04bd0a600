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

// Fee frequency types. Exactly one computation rule applies per type.
const (
	FrequencyPerTransaction = "per_transaction"
	FrequencyDaily          = "daily"
	FrequencyMonthly        = "monthly"
	FrequencyYearly         = "yearly"
	FrequencyOneTime        = "one_time"
)

// FeeDefinition is one entry of a merchant's fee schedule. Value is a
// percentage of reporting-currency sales when IsPercentage is set,
// otherwise a fixed reporting-currency amount.
type FeeDefinition struct {
	FeeID         string          `json:"fee_id"`
	MerchantID    string          `json:"merchant_id"`
	Name          string          `json:"name"`
	Frequency     string          `json:"frequency"`
	IsPercentage  bool            `json:"is_percentage"`
	Value         decimal.Decimal `json:"value"`
	EffectiveFrom Day             `json:"effective_from"`
	EffectiveTo   Day             `json:"effective_to,omitempty"`
}

// EffectiveAt reports whether the definition applies on the given day.
// A zero EffectiveTo means open-ended.
func (f *FeeDefinition) EffectiveAt(day Day) bool {
	if day.Before(f.EffectiveFrom) {
		return false
	}
	if !f.EffectiveTo.IsZero() && day.After(f.EffectiveTo) {
		return false
	}
	return true
}

// FeeApplication is the append-only audit record of a fee applied
// during a settlement run. Never mutated or deleted by the engine.
type FeeApplication struct {
	ApplicationID string          `json:"application_id"`
	MerchantID    string          `json:"merchant_id"`
	FeeID         string          `json:"fee_id"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	AppliedDate   Day             `json:"applied_date"`
	CreatedAt     time.Time       `json:"created_at"`
}
