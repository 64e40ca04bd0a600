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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/clearsettle/settle/model"
)

// SettlementError wraps a failure in one stage of a settlement run with
// enough context to retry or alert on it.
type SettlementError struct {
	MerchantID string
	Range      model.DateRange
	Stage      string
	Err        error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement %s for %s (%s) failed: %v", e.Stage, e.MerchantID, e.Range, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

func (s *Settle) failRun(merchantID string, rng model.DateRange, stage string, err error) error {
	serr := &SettlementError{MerchantID: merchantID, Range: rng, Stage: stage, Err: err}
	s.logger.WithError(err).WithField("stage", stage).Error("settlement run failed")
	return serr
}

// GenerateSettlement runs the full settlement pipeline for one merchant
// and date range: fetch transactions, resolve rates, aggregate totals,
// compute fees and rolling reserve, and persist the run. A non-empty
// currency filter restricts the run to transactions in those
// currencies. All writes share one unit of work; a failure at any stage
// rolls everything back and returns no partial result.
func (s *Settle) GenerateSettlement(ctx context.Context, merchantID string, rng model.DateRange, currencyFilter []string) (*model.Settlement, error) {
	ctx, span := otel.Tracer("settlement.run").Start(ctx, "Generating settlement")
	defer span.End()

	transactions, err := s.datasource.GetMerchantTransactions(ctx, merchantID, rng, currencyFilter)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "transaction fetch", err)
	}

	table, err := s.fetchRateTable(ctx, s.foreignCurrencies(transactions))
	if err != nil {
		return nil, s.failRun(merchantID, rng, "rate fetch", err)
	}

	totals := s.Aggregate(transactions, table)

	schedule, err := s.datasource.GetMerchantFees(ctx, merchantID, rng.Start)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "fee schedule fetch", err)
	}

	uow, err := s.datasource.BeginUnitOfWork(ctx)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "begin", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			s.logger.WithError(err).Error("settlement rollback failed")
		}
	}()

	fees, err := s.ComputeFees(ctx, uow, merchantID, totals, rng, schedule)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "fees", err)
	}

	reserves, err := s.ComputeReserves(ctx, uow, merchantID, totals, rng)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "rolling reserve", err)
	}

	releaseable, err := s.datasource.GetReleaseableFunds(ctx, merchantID, rng.End)
	if err != nil {
		return nil, s.failRun(merchantID, rng, "releaseable reserve", err)
	}

	settlement := &model.Settlement{
		SettlementID:       model.GenerateUUIDWithSuffix("stl"),
		MerchantID:         merchantID,
		Range:              rng,
		Totals:             totals,
		Fees:               fees,
		RollingReserve:     reserves,
		ReleaseableReserve: releaseable,
		GeneratedAt:        time.Now(),
	}

	if err := uow.RecordSettlementRun(ctx, settlement); err != nil {
		return nil, s.failRun(merchantID, rng, "record", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, s.failRun(merchantID, rng, "commit", err)
	}

	s.logger.WithFields(logrus.Fields{
		"settlement_id": settlement.SettlementID,
		"merchant_id":   merchantID,
		"range":         rng.String(),
		"currencies":    len(totals),
	}).Info("settlement generated")

	return settlement, nil
}

// foreignCurrencies returns the distinct non-reporting currencies seen
// in the run's transactions. The reporting currency never needs a
// quote.
func (s *Settle) foreignCurrencies(transactions []*model.Transaction) []string {
	seen := make(map[string]struct{})
	currencies := []string{}
	for _, transaction := range transactions {
		if transaction.Currency == "" || transaction.Currency == s.reporting {
			continue
		}
		if _, ok := seen[transaction.Currency]; ok {
			continue
		}
		seen[transaction.Currency] = struct{}{}
		currencies = append(currencies, transaction.Currency)
	}
	return currencies
}
