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
)

// Transaction type and status values as they arrive from the acquiring
// side. The mixed casing is the upstream wire format, not a style choice.
const (
	TypeSale          = "sale"
	TypeRefund        = "Refund"
	TypePartialRefund = "Partial Refund"
	TypeChargeback    = "Chargeback"

	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
)

// Transaction is a raw acquiring transaction, read-only to the
// settlement engine. Amount is in minor units (cents) and must be
// divided by 100 before any monetary arithmetic.
type Transaction struct {
	ID            int64                  `json:"-"`
	TransactionID string                 `json:"id"`
	MerchantID    string                 `json:"merchant_id"`
	Amount        int64                  `json:"amount"`
	Currency      string                 `json:"currency"`
	CardScheme    string                 `json:"card_scheme"`
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

// IsReversal reports whether the transaction moves money back to the
// cardholder. Reversals convert at the buy rate, everything else at
// the sell rate.
func (transaction *Transaction) IsReversal() bool {
	switch transaction.Type {
	case TypeRefund, TypePartialRefund, TypeChargeback:
		return true
	}
	return false
}

// Day returns the transaction's calendar day, used for rate lookups.
func (transaction *Transaction) Day() Day {
	return DayOf(transaction.CreatedAt)
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}
