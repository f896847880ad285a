package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the pipeline binaries.
type Config struct {
	AWS          AWSConfig          `yaml:"aws"`
	Tables       TablesConfig       `yaml:"tables"`
	Queues       QueuesConfig       `yaml:"queues"`
	Flags        FlagsConfig        `yaml:"flags"`
	Ops          OpsConfig          `yaml:"ops"`
	Notification NotificationConfig `yaml:"notification"`
	Cache        CacheConfig        `yaml:"cache"`
}

// AWSConfig holds region and optional static credentials. When AccessKey
// is empty the default credential chain is used.
type AWSConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Profile   string `yaml:"profile"`
}

// TablesConfig names the DynamoDB tables the pipeline reads and writes.
type TablesConfig struct {
	Leads         string `yaml:"leads"`
	Rules         string `yaml:"rules"`
	Counters      string `yaml:"counters"`
	Unassigned    string `yaml:"unassigned"`
	Notifications string `yaml:"notifications"`
	Accounts      string `yaml:"accounts"`
}

// QueuesConfig names the SQS queues the workers consume and publish to.
type QueuesConfig struct {
	LeadEventsURL    string `yaml:"lead_events_url"`
	RoutingEventsURL string `yaml:"routing_events_url"`
}

// FlagsConfig points at the feature-flag snapshot source: a local YAML
// path or an s3://bucket/key URI.
type FlagsConfig struct {
	Source string `yaml:"source"`
}

// OpsConfig configures the read-only operator API.
type OpsConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StaffRecipient is a statically configured internal notification target.
type StaffRecipient struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// NotificationConfig holds channel credentials and the internal roster.
type NotificationConfig struct {
	FromEmail     string           `yaml:"from_email"`
	FromName      string           `yaml:"from_name"`
	SNSSenderID   string           `yaml:"sns_sender_id"`
	TwilioSID     string           `yaml:"twilio_sid"`
	TwilioToken   string           `yaml:"twilio_token"`
	TwilioFrom    string           `yaml:"twilio_from"`
	InternalStaff []StaffRecipient `yaml:"internal_staff"`
}

// CacheConfig configures the redis membership cache. Empty Addr disables it.
type CacheConfig struct {
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

// Load reads configuration from the given YAML file, with .env loaded
// first and environment variables taking precedence over file values.
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		AWS: AWSConfig{Region: "us-east-1"},
		Tables: TablesConfig{
			Leads:         "leads",
			Rules:         "assignment-rules",
			Counters:      "assignment-counters",
			Unassigned:    "unassigned-leads",
			Notifications: "lead-notifications",
			Accounts:      "accounts",
		},
		Flags: FlagsConfig{Source: "feature-flags.yaml"},
		Ops:   OpsConfig{Addr: ":8080"},
		Cache: CacheConfig{TTL: 5 * time.Minute},
	}
}

func applyEnvOverrides(cfg *Config) {
	setIfEnv(&cfg.AWS.Region, "AWS_REGION")
	setIfEnv(&cfg.AWS.AccessKey, "AWS_ACCESS_KEY_ID")
	setIfEnv(&cfg.AWS.SecretKey, "AWS_SECRET_ACCESS_KEY")
	setIfEnv(&cfg.Tables.Leads, "LEADS_TABLE")
	setIfEnv(&cfg.Tables.Rules, "RULES_TABLE")
	setIfEnv(&cfg.Tables.Counters, "COUNTERS_TABLE")
	setIfEnv(&cfg.Tables.Unassigned, "UNASSIGNED_TABLE")
	setIfEnv(&cfg.Tables.Notifications, "NOTIFICATIONS_TABLE")
	setIfEnv(&cfg.Tables.Accounts, "ACCOUNTS_TABLE")
	setIfEnv(&cfg.Queues.LeadEventsURL, "LEAD_EVENTS_QUEUE_URL")
	setIfEnv(&cfg.Queues.RoutingEventsURL, "ROUTING_EVENTS_QUEUE_URL")
	setIfEnv(&cfg.Flags.Source, "FEATURE_FLAGS_SOURCE")
	setIfEnv(&cfg.Ops.Addr, "OPS_ADDR")
	setIfEnv(&cfg.Notification.FromEmail, "NOTIFY_FROM_EMAIL")
	setIfEnv(&cfg.Notification.TwilioSID, "TWILIO_ACCOUNT_SID")
	setIfEnv(&cfg.Notification.TwilioToken, "TWILIO_AUTH_TOKEN")
	setIfEnv(&cfg.Notification.TwilioFrom, "TWILIO_FROM_NUMBER")
	setIfEnv(&cfg.Cache.Addr, "REDIS_ADDR")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the fields every binary needs are present.
func (c *Config) Validate() error {
	if c.AWS.Region == "" {
		return fmt.Errorf("aws.region is required")
	}
	if c.Tables.Leads == "" || c.Tables.Rules == "" {
		return fmt.Errorf("tables.leads and tables.rules are required")
	}
	return nil
}
