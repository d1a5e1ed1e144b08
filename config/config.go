/*
Copyright 2025 AF360 Bank Authors.

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
	DEFAULT_PORT = "5002"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"FINANCEIRO_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"FINANCEIRO_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"FINANCEIRO_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"FINANCEIRO_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"FINANCEIRO_REDIS_DNS"`
}

// CompanyRegistryConfig points at the external CNPJ registry used to enrich
// transaction descriptions with counterparty names.
type CompanyRegistryConfig struct {
	Url            string `json:"url" envconfig:"FINANCEIRO_REGISTRY_URL"`
	TimeoutSec     int    `json:"timeout_sec" envconfig:"FINANCEIRO_REGISTRY_TIMEOUT_SEC"`
	RetryDelayMs   int    `json:"retry_delay_ms" envconfig:"FINANCEIRO_REGISTRY_RETRY_DELAY_MS"`
	CacheTtlMinute int    `json:"cache_ttl_minute" envconfig:"FINANCEIRO_REGISTRY_CACHE_TTL_MINUTE"`
}

type IngestionConfig struct {
	UploadDir         string `json:"upload_dir" envconfig:"FINANCEIRO_UPLOAD_DIR"`
	ProgressTtlSecond int    `json:"progress_ttl_second" envconfig:"FINANCEIRO_PROGRESS_TTL_SECOND"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"FINANCEIRO_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"FINANCEIRO_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"FINANCEIRO_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string                `json:"project_name" envconfig:"FINANCEIRO_PROJECT_NAME"`
	Server       ServerConfig          `json:"server"`
	DataSource   DataSourceConfig      `json:"data_source"`
	Redis        RedisConfig           `json:"redis"`
	Registry     CompanyRegistryConfig `json:"registry"`
	Ingestion    IngestionConfig       `json:"ingestion"`
	Notification Notification          `json:"notification"`
	RateLimit    RateLimitConfig       `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("financeiro", &cnf)
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
		return nil, errors.New("config not loaded from file. Create a json file called financeiro.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Financeiro Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Registry.Url == "" {
		cnf.Registry.Url = "https://brasilapi.com.br/api"
	}
	if cnf.Registry.TimeoutSec <= 0 {
		cnf.Registry.TimeoutSec = 5
	}
	if cnf.Registry.RetryDelayMs <= 0 {
		cnf.Registry.RetryDelayMs = 500
	}
	if cnf.Registry.CacheTtlMinute <= 0 {
		cnf.Registry.CacheTtlMinute = 24 * 60
	}

	if cnf.Ingestion.UploadDir == "" {
		cnf.Ingestion.UploadDir = "uploads"
	}
	if cnf.Ingestion.ProgressTtlSecond <= 0 {
		// terminal import jobs stay pollable for this long before reclaim
		cnf.Ingestion.ProgressTtlSecond = 30
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Registry.Url = strings.TrimRight(strings.TrimSpace(cnf.Registry.Url), "/")

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
