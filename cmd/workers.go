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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/clearsettle/settle"
	"github.com/clearsettle/settle/config"
	"github.com/clearsettle/settle/internal/notification"
	redis_db "github.com/clearsettle/settle/internal/redis-db"
	"github.com/clearsettle/settle/model"
)

// processSettlement runs one queued settlement. Conflicts mean the run
// was already generated, so they are terminal rather than retried.
func (b *settleInstance) processSettlement(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("settle.workers").Start(ctx, "Process settlement run from queue")
	defer span.End()

	var payload settle.SettlementRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	rng := model.NewDateRange(payload.Start, payload.End)
	result, err := b.settle.GenerateSettlement(ctx, payload.MerchantID, rng, payload.Currencies)
	if err != nil {
		retryCount, _ := asynq.GetRetryCount(ctx)
		if retryCount >= b.cnf.Queue.MaxRetryAttempts {
			notification.NotifyError(fmt.Errorf("settlement run gave up after %d attempts: %w", retryCount, err))
			return fmt.Errorf("max retry attempts reached: %w", err)
		}
		logrus.Infof("Settlement %s %s pushed back for retry due to error: %v", payload.MerchantID, rng, err)
		return err
	}

	log.Println(" [*] Settlement Generated", result.SettlementID)
	return nil
}

// processReserveRelease releases a merchant's matured reserve entries.
func (b *settleInstance) processReserveRelease(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("settle.workers").Start(ctx, "Release matured reserves from queue")
	defer span.End()

	var payload settle.ReserveReleasePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	released, err := b.settle.ReleaseMaturedReserves(ctx, payload.MerchantID, payload.AsOf)
	if err != nil {
		logrus.Infof("Reserve release for %s pushed back for retry due to error: %v", payload.MerchantID, err)
		return err
	}

	log.Printf(" [*] Released %d reserve entries for %s", released, payload.MerchantID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.SettlementQueue] = 3
	queues[cfg.Queue.ReserveReleaseQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(fmt.Sprintf("redis://%s", conf.Redis.Dns), conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *settleInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.SettlementQueue, b.processSettlement)
	mux.HandleFunc(cfg.Queue.ReserveReleaseQueue, b.processReserveRelease)
}

// workerCommands defines the "workers" command that consumes the
// settlement and reserve-release queues.
func workerCommands(b *settleInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start settle workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			if err := srv.Run(mux); err != nil {
				notification.NotifyError(err)
				log.Fatalf("Error running worker server: %v", err)
			}
		},
	}

	return cmd
}
