// Package config loads the GPay client and sandbox settings from the environment
package config

import (
	"strings"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds all configuration
type Config struct {
	GPay    GPayConfig
	Sandbox SandboxConfig
	Journal JournalConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// GPayConfig holds the merchant credentials and the deployment to talk to
type GPayConfig struct {
	APIKey      string
	SecretKey   string
	Password    string
	Environment string
	Language    string
	Timeout     time.Duration
}

// Credentials returns the client credentials
func (c GPayConfig) Credentials() gpay.Credentials {
	return gpay.Credentials{
		APIKey:    c.APIKey,
		SecretKey: c.SecretKey,
		Password:  c.Password,
	}
}

// BaseURL resolves Environment to a known deployment
func (c GPayConfig) BaseURL() (gpay.BaseURL, error) {
	return gpay.ParseEnvironment(c.Environment)
}

// SandboxConfig holds the local GPay server configuration
type SandboxConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Username       string
	WalletID       string
	WalletName     string
	AccountName    string
	OpeningBalance string
	SenderFee      string
}

// JournalConfig holds the call journal database configuration
type JournalConfig struct {
	Enabled bool
	Driver  string
	DSN     string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level    string
	Encoding string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from the environment with defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("GPAY_ENVIRONMENT", "dev")
	v.SetDefault("GPAY_LANGUAGE", gpay.DefaultLanguage)
	v.SetDefault("GPAY_TIMEOUT", "30s")
	v.SetDefault("SANDBOX_PORT", "8080")
	v.SetDefault("SANDBOX_READ_TIMEOUT", "30s")
	v.SetDefault("SANDBOX_WRITE_TIMEOUT", "30s")
	v.SetDefault("SANDBOX_USERNAME", "merchant")
	v.SetDefault("SANDBOX_WALLET_ID", "W-1001")
	v.SetDefault("SANDBOX_WALLET_NAME", "Sandbox Merchant")
	v.SetDefault("SANDBOX_ACCOUNT_NAME", "Sandbox Merchant")
	v.SetDefault("SANDBOX_OPENING_BALANCE", "1000.00")
	v.SetDefault("SANDBOX_SENDER_FEE", "0.00")
	v.SetDefault("JOURNAL_ENABLED", false)
	v.SetDefault("JOURNAL_DRIVER", "postgres")
	v.SetDefault("JOURNAL_DSN", "host=localhost dbname=gpay sslmode=disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("METRICS_ENABLED", true)

	timeout, err := parseDuration(v, "GPAY_TIMEOUT")
	if err != nil {
		return nil, err
	}
	readTimeout, err := parseDuration(v, "SANDBOX_READ_TIMEOUT")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parseDuration(v, "SANDBOX_WRITE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	return &Config{
		GPay: GPayConfig{
			APIKey:      v.GetString("GPAY_API_KEY"),
			SecretKey:   v.GetString("GPAY_SECRET_KEY"),
			Password:    v.GetString("GPAY_PASSWORD"),
			Environment: v.GetString("GPAY_ENVIRONMENT"),
			Language:    v.GetString("GPAY_LANGUAGE"),
			Timeout:     timeout,
		},
		Sandbox: SandboxConfig{
			Port:           v.GetString("SANDBOX_PORT"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			Username:       v.GetString("SANDBOX_USERNAME"),
			WalletID:       v.GetString("SANDBOX_WALLET_ID"),
			WalletName:     v.GetString("SANDBOX_WALLET_NAME"),
			AccountName:    v.GetString("SANDBOX_ACCOUNT_NAME"),
			OpeningBalance: v.GetString("SANDBOX_OPENING_BALANCE"),
			SenderFee:      v.GetString("SANDBOX_SENDER_FEE"),
		},
		Journal: JournalConfig{
			Enabled: v.GetBool("JOURNAL_ENABLED"),
			Driver:  v.GetString("JOURNAL_DRIVER"),
			DSN:     v.GetString("JOURNAL_DSN"),
		},
		Logging: LoggingConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}, nil
}

// Validate checks the settings a client needs
func (c *Config) Validate() error {
	if err := c.validateGPay(); err != nil {
		return errors.Wrap(err, "gpay config")
	}
	if err := c.validateJournal(); err != nil {
		return errors.Wrap(err, "journal config")
	}
	return nil
}

// ValidateSandbox checks the settings the sandbox server needs
func (c *Config) ValidateSandbox() error {
	if err := c.validateGPay(); err != nil {
		return errors.Wrap(err, "gpay config")
	}
	if c.Sandbox.Port == "" {
		return errors.New("sandbox config: port is required")
	}
	if c.Sandbox.WalletID == "" {
		return errors.New("sandbox config: wallet id is required")
	}
	return nil
}

func (c *Config) validateGPay() error {
	if c.GPay.APIKey == "" {
		return errors.New("api key is required")
	}
	if c.GPay.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if c.GPay.Password == "" {
		return errors.New("password is required")
	}
	if _, err := c.GPay.BaseURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if c.Journal.DSN == "" {
		return errors.New("dsn is required when the journal is enabled")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
