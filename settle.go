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
	"embed"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clearsettle/settle/config"
	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/internal/cache"
	"github.com/clearsettle/settle/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Settle is the settlement engine. It owns the computation pipeline for
// one merchant and date range: aggregation, rate resolution, fees,
// rolling reserve, and the transactional write of the run.
type Settle struct {
	datasource database.IDataSource
	queue      *Queue
	cache      cache.Cache
	logger     *logrus.Logger
	reporting  string
	rateTTL    time.Duration
}

// NewSettle initializes the engine from the loaded configuration. The
// queue and rate cache are optional; without Redis the engine computes
// runs synchronously and fetches rates on every run.
func NewSettle(db database.IDataSource, logger *logrus.Logger) (*Settle, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	engine := &Settle{
		datasource: db,
		logger:     logger,
		reporting:  configuration.Settlement.ReportingCurrency,
		rateTTL:    time.Duration(configuration.Settlement.RateCacheTTLMin) * time.Minute,
	}

	if configuration.Redis.Dns != "" {
		engine.queue = NewQueue(configuration)
		rateCache, err := cache.NewCache()
		if err != nil {
			logger.WithError(err).Warn("rate cache unavailable, continuing without it")
		} else {
			engine.cache = rateCache
		}
	}

	return engine, nil
}

// GetSettlement retrieves one stored settlement run.
func (s *Settle) GetSettlement(ctx context.Context, settlementID string) (*model.Settlement, error) {
	return s.datasource.GetSettlementRun(ctx, settlementID)
}
