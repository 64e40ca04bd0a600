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
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/clearsettle/settle/model"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// GenerateSettlementRequest is the payload for both the synchronous and
// the queued settlement endpoints. Dates are calendar days, inclusive
// on both ends. Currencies optionally restricts the run to the listed
// uppercase ISO codes.
type GenerateSettlementRequest struct {
	MerchantID string   `json:"merchant_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Currencies []string `json:"currencies,omitempty"`
}

func validateDayFormat(value interface{}) error {
	s, _ := value.(string)
	if _, err := time.Parse(model.DayFormat, s); err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 2024-01-15)")
	}
	return nil
}

func (r *GenerateSettlementRequest) ValidateGenerateSettlement() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MerchantID, validation.Required),
		validation.Field(&r.StartDate, validation.Required, validation.By(validateDayFormat)),
		validation.Field(&r.EndDate, validation.Required, validation.By(validateDayFormat)),
		validation.Field(&r.Currencies, validation.Each(validation.Match(currencyCodePattern).Error("currency codes must be 3 uppercase letters"))),
	)
}

// ToRange converts the validated request dates into a DateRange.
func (r *GenerateSettlementRequest) ToRange() (model.DateRange, error) {
	start, err := model.ParseDay(r.StartDate)
	if err != nil {
		return model.DateRange{}, err
	}
	end, err := model.ParseDay(r.EndDate)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.NewDateRange(start, end), nil
}
