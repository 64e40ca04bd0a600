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
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/clearsettle/settle/config"
	"github.com/clearsettle/settle/internal/apierror"
	redis_db "github.com/clearsettle/settle/internal/redis-db"
	"github.com/clearsettle/settle/model"
)

// Queue hands settlement work to the asynq workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// SettlementRunPayload is the queued request for one settlement run.
type SettlementRunPayload struct {
	MerchantID string    `json:"merchant_id"`
	Start      model.Day `json:"start"`
	End        model.Day `json:"end"`
	Currencies []string  `json:"currencies,omitempty"`
}

// ReserveReleasePayload is the queued request to release a merchant's
// matured reserves.
type ReserveReleasePayload struct {
	MerchantID string    `json:"merchant_id"`
	AsOf       model.Day `json:"as_of"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(fmt.Sprintf("redis://%s", conf.Redis.Dns), conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueSettlement queues one settlement run. The task ID is derived
// from the merchant, range and currency filter, so queueing the same
// run twice while the first is still pending is a no-op.
func (q *Queue) EnqueueSettlement(merchantID string, rng model.DateRange, currencies []string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(SettlementRunPayload{
		MerchantID: merchantID,
		Start:      rng.Start,
		End:        rng.End,
		Currencies: currencies,
	})
	if err != nil {
		return err
	}

	taskID := fmt.Sprintf("%s:%s:%s", merchantID, rng.Start, rng.End)
	if len(currencies) > 0 {
		taskID += ":" + strings.Join(currencies, ",")
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.Queue(cfg.Queue.SettlementQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.SettlementQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued settlement run: %s %s", merchantID, rng)
	return nil
}

// QueueSettlement queues a settlement run for asynchronous processing.
// Errors when the engine was started without Redis.
func (s *Settle) QueueSettlement(merchantID string, rng model.DateRange, currencies []string) error {
	if s.queue == nil {
		return apierror.NewAPIError(apierror.ErrBadRequest, "Queue is not configured, run the settlement synchronously", nil)
	}
	return s.queue.EnqueueSettlement(merchantID, rng, currencies)
}

// EnqueueReserveRelease queues a reserve-release sweep for a merchant.
func (q *Queue) EnqueueReserveRelease(merchantID string, asOf model.Day) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(ReserveReleasePayload{MerchantID: merchantID, AsOf: asOf})
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("release:%s:%s", merchantID, asOf)),
		asynq.Queue(cfg.Queue.ReserveReleaseQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.ReserveReleaseQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}
