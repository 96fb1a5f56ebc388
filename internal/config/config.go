/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the finance-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                    string `mapstructure:"SERVER_PORT"`
	DatabaseURL                   string `mapstructure:"DATABASE_URL"`
	RedisURL                      string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix          string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL                   string `mapstructure:"RABBITMQ_URL"`
	LedgerEventExchange           string `mapstructure:"LEDGER_EVENT_EXCHANGE"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret              string `mapstructure:"JWT_REFRESH_SECRET"`
	AccessTokenTTLMinutes         int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTLHours          int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	LedgerWriteRateLimitPerMinute int    `mapstructure:"LEDGER_WRITE_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "finwell:rate_limit")
	viper.SetDefault("LEDGER_EVENT_EXCHANGE", "finwell.events")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 168)
	viper.SetDefault("LEDGER_WRITE_RATE_LIMIT_PER_MINUTE", 0)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "FINANCE_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("LEDGER_EVENT_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_REFRESH_SECRET")
	_ = viper.BindEnv("ACCESS_TOKEN_TTL_MINUTES")
	_ = viper.BindEnv("REFRESH_TOKEN_TTL_HOURS")
	_ = viper.BindEnv("LEDGER_WRITE_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "finwell:rate_limit"
	}

	// A refresh secret may be omitted; fall back to the access secret so a
	// single-secret deployment still works.
	if strings.TrimSpace(config.JWTRefreshSecret) == "" {
		config.JWTRefreshSecret = config.JWTSecret
	}

	if config.AccessTokenTTLMinutes <= 0 {
		config.AccessTokenTTLMinutes = 15
	}
	if config.RefreshTokenTTLHours <= 0 {
		config.RefreshTokenTTLHours = 168
	}
	if config.LedgerWriteRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative ledger write rate limit configured; disabling\" limit=%d", config.LedgerWriteRateLimitPerMinute)
		config.LedgerWriteRateLimitPerMinute = 0
	}

	return
}
