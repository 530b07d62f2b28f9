package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the hotspot service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Security SecurityConfig `mapstructure:"security"`
	Otp      OtpConfig      `mapstructure:"otp"`
	Flow     FlowConfig     `mapstructure:"flow"`
	Sms      SmsConfig      `mapstructure:"sms"`
	Radius   RadiusConfig   `mapstructure:"radius"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds redis configuration for the login flow store
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SecurityConfig holds inter-service security settings
type SecurityConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// OtpConfig holds OTP issuance and verification settings
type OtpConfig struct {
	Length                int `mapstructure:"length"`
	ExpiryMinutes         int `mapstructure:"expiry_minutes"`
	MaxAttempts           int `mapstructure:"max_attempts"`
	ResendCooldownSeconds int `mapstructure:"resend_cooldown_seconds"`
	MaxCodesPerHour       int `mapstructure:"max_codes_per_hour"`
}

// FlowConfig holds login flow state machine settings
type FlowConfig struct {
	TTLMinutes  int    `mapstructure:"ttl_minutes"`
	TokenSecret string `mapstructure:"token_secret"`
}

// SmsConfig holds SMS gateway settings
type SmsConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	SenderID   string `mapstructure:"sender_id"`
}

// RadiusConfig holds RADIUS provisioning backend settings
type RadiusConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Load loads configuration with defaults overridden from the environment
func Load() (*Config, error) {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8092")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "hotspot")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("otp.length", 6)
	viper.SetDefault("otp.expiry_minutes", 5)
	viper.SetDefault("otp.max_attempts", 3)
	viper.SetDefault("otp.resend_cooldown_seconds", 60)
	viper.SetDefault("otp.max_codes_per_hour", 5)

	viper.SetDefault("flow.ttl_minutes", 5)

	viper.SetDefault("sms.gateway_url", "http://sms-gateway:8095")
	viper.SetDefault("sms.sender_id", "HOTSPOT")

	viper.SetDefault("radius.base_url", "http://radius-sync:8096")

	viper.AutomaticEnv()

	bindEnv("server.host", "SERVER_HOST")
	bindEnv("server.port", "PORT")
	bindEnv("server.mode", "GIN_MODE")

	bindEnv("database.host", "DB_HOST")
	bindEnv("database.port", "DB_PORT")
	bindEnv("database.user", "DB_USER")
	bindEnv("database.password", "DB_PASSWORD")
	bindEnv("database.name", "DB_NAME")
	bindEnv("database.sslmode", "DB_SSLMODE")

	bindEnv("redis.host", "REDIS_HOST")
	bindEnv("redis.port", "REDIS_PORT")
	bindEnv("redis.password", "REDIS_PASSWORD")

	bindEnv("security.api_key", "API_KEY")

	bindEnv("otp.length", "OTP_LENGTH")
	bindEnv("otp.expiry_minutes", "OTP_EXPIRY_MINUTES")
	bindEnv("otp.max_attempts", "OTP_MAX_ATTEMPTS")
	bindEnv("otp.resend_cooldown_seconds", "OTP_RESEND_COOLDOWN_SECONDS")
	bindEnv("otp.max_codes_per_hour", "OTP_MAX_CODES_PER_HOUR")

	bindEnv("flow.ttl_minutes", "FLOW_TTL_MINUTES")
	bindEnv("flow.token_secret", "FLOW_TOKEN_SECRET")

	bindEnv("sms.gateway_url", "SMS_GATEWAY_URL")
	bindEnv("sms.api_key", "SMS_API_KEY")
	bindEnv("sms.sender_id", "SMS_SENDER_ID")

	bindEnv("radius.base_url", "RADIUS_SYNC_URL")
	bindEnv("radius.api_key", "RADIUS_API_KEY")

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Security.APIKey == "" {
		return fmt.Errorf("API_KEY is required for inter-service authentication")
	}
	if c.Flow.TokenSecret == "" {
		return fmt.Errorf("FLOW_TOKEN_SECRET is required to sign flow tokens")
	}
	if len(c.Flow.TokenSecret) < 32 {
		return fmt.Errorf("FLOW_TOKEN_SECRET must be at least 32 bytes")
	}
	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetOTPExpiry returns the OTP expiry duration
func (c *Config) GetOTPExpiry() time.Duration {
	return time.Duration(c.Otp.ExpiryMinutes) * time.Minute
}

// GetResendCooldown returns the minimum wait between issuances
func (c *Config) GetResendCooldown() time.Duration {
	return time.Duration(c.Otp.ResendCooldownSeconds) * time.Second
}

// GetFlowTTL returns the login flow lifetime
func (c *Config) GetFlowTTL() time.Duration {
	return time.Duration(c.Flow.TTLMinutes) * time.Minute
}

func bindEnv(key, env string) {
	if value := os.Getenv(env); value != "" {
		viper.Set(key, value)
	}
}
