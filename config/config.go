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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT               = "5002"
	DEFAULT_REPORTING_CURRENCY = "EUR"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"SETTLE_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"SETTLE_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"SETTLE_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"SETTLE_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"SETTLE_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"SETTLE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"SETTLE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"SETTLE_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"SETTLE_REDIS_SKIP_TLS_VERIFY"`
}

// SettlementConfig carries the knobs of the computation core itself.
type SettlementConfig struct {
	ReportingCurrency string `json:"reporting_currency" envconfig:"SETTLE_REPORTING_CURRENCY"`
	RateCacheTTLMin   int    `json:"rate_cache_ttl_min" envconfig:"SETTLE_RATE_CACHE_TTL_MIN"`
}

type QueueConfig struct {
	SettlementQueue     string `json:"settlement_queue" envconfig:"SETTLE_QUEUE_SETTLEMENT"`
	ReserveReleaseQueue string `json:"reserve_release_queue" envconfig:"SETTLE_QUEUE_RESERVE_RELEASE"`
	MaxRetryAttempts    int    `json:"max_retry_attempts" envconfig:"SETTLE_QUEUE_MAX_RETRY_ATTEMPTS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"SETTLE_PROJECT_NAME"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"SETTLE_ENABLE_TELEMETRY"`
	Server          ServerConfig     `json:"server"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Settlement      SettlementConfig `json:"settlement"`
	Queue           QueueConfig      `json:"queue"`
	Notification    Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("settle", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called settle.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Settle Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Warning: Redis DNS is empty. Queue and rate cache will be disabled.")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Settlement.ReportingCurrency = strings.ToUpper(strings.TrimSpace(cnf.Settlement.ReportingCurrency))

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Settlement.ReportingCurrency == "" {
		cnf.Settlement.ReportingCurrency = DEFAULT_REPORTING_CURRENCY
	}

	if cnf.Settlement.RateCacheTTLMin <= 0 {
		cnf.Settlement.RateCacheTTLMin = 60
	}

	if cnf.Queue.SettlementQueue == "" {
		cnf.Queue.SettlementQueue = "settle:runs"
	}
	if cnf.Queue.ReserveReleaseQueue == "" {
		cnf.Queue.ReserveReleaseQueue = "settle:reserve_release"
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Settlement.ReportingCurrency == "" {
		mockConfig.Settlement.ReportingCurrency = DEFAULT_REPORTING_CURRENCY
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
