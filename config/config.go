/*
Copyright 2024 Arigo Pay Authors.

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
	DEFAULT_PORT = "5401"

	DEFAULT_SUBMISSION_QUEUE = "new:submission"
	DEFAULT_WEBHOOK_QUEUE    = "new:webhook"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"ARIGOPAY_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"ARIGOPAY_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"ARIGOPAY_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"ARIGOPAY_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"ARIGOPAY_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"ARIGOPAY_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"ARIGOPAY_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"ARIGOPAY_REDIS_DNS"`
}

type QueueConfig struct {
	SubmissionQueue  string `json:"submission_queue" envconfig:"ARIGOPAY_QUEUE_SUBMISSION"`
	WebhookQueue     string `json:"webhook_queue" envconfig:"ARIGOPAY_QUEUE_WEBHOOK"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"ARIGOPAY_QUEUE_MAX_RETRY_ATTEMPTS"`
	MonitoringPort   string `json:"monitoring_port" envconfig:"ARIGOPAY_QUEUE_MONITORING_PORT"`
}

// GatewayConfig configures the external payment gateway collaborator.
// TimeoutSec bounds the wait for one gateway call; MaxRetries bounds the
// backoff retries performed when the gateway is unavailable.
type GatewayConfig struct {
	Url        string            `json:"url" envconfig:"ARIGOPAY_GATEWAY_URL"`
	TimeoutSec int               `json:"timeout_sec" envconfig:"ARIGOPAY_GATEWAY_TIMEOUT_SEC"`
	MaxRetries int               `json:"max_retries" envconfig:"ARIGOPAY_GATEWAY_MAX_RETRIES"`
	Headers    map[string]string `json:"headers"`
}

// AuthBackendConfig configures the external authorization backend and the
// factor retry policy. MaxFactorAttempts bounds consecutive rejected PIN
// entries before the session is forced to CANCELLED.
type AuthBackendConfig struct {
	Url               string `json:"url" envconfig:"ARIGOPAY_AUTH_BACKEND_URL"`
	TimeoutSec        int    `json:"timeout_sec" envconfig:"ARIGOPAY_AUTH_BACKEND_TIMEOUT_SEC"`
	MaxFactorAttempts int    `json:"max_factor_attempts" envconfig:"ARIGOPAY_AUTH_MAX_FACTOR_ATTEMPTS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"ARIGOPAY_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"ARIGOPAY_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"ARIGOPAY_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName     string            `json:"project_name" envconfig:"ARIGOPAY_PROJECT_NAME"`
	EnableTelemetry bool              `json:"enable_telemetry" envconfig:"ARIGOPAY_ENABLE_TELEMETRY"`
	Server          ServerConfig      `json:"server"`
	DataSource      DataSourceConfig  `json:"data_source"`
	Redis           RedisConfig       `json:"redis"`
	Queue           QueueConfig       `json:"queue"`
	PaymentGateway  GatewayConfig     `json:"payment_gateway"`
	AuthBackend     AuthBackendConfig `json:"auth_backend"`
	Notification    Notification      `json:"notification"`
	RateLimit       RateLimitConfig   `json:"rate_limit"`
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
	err = envconfig.Process("arigopay", &cnf)
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
		return nil, errors.New("config not loaded from file. Create a json file called arigopay.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Arigo Pay Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.PaymentGateway.Url == "" {
		log.Println("Error: Payment gateway URL is empty. It's a required field.")
		return errors.New("payment gateway URL is required")
	}

	if cnf.AuthBackend.Url == "" {
		log.Println("Error: Authorization backend URL is empty. It's a required field.")
		return errors.New("authorization backend URL is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.PaymentGateway.Url = strings.TrimSpace(cnf.PaymentGateway.Url)
	cnf.AuthBackend.Url = strings.TrimSpace(cnf.AuthBackend.Url)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Queue.SubmissionQueue == "" {
		cnf.Queue.SubmissionQueue = DEFAULT_SUBMISSION_QUEUE
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = DEFAULT_WEBHOOK_QUEUE
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5402"
	}

	if cnf.PaymentGateway.TimeoutSec <= 0 {
		cnf.PaymentGateway.TimeoutSec = 30
	}
	if cnf.PaymentGateway.MaxRetries <= 0 {
		cnf.PaymentGateway.MaxRetries = 3
	}
	if cnf.AuthBackend.TimeoutSec <= 0 {
		cnf.AuthBackend.TimeoutSec = 10
	}
	if cnf.AuthBackend.MaxFactorAttempts <= 0 {
		cnf.AuthBackend.MaxFactorAttempts = 3
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
