package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Assistant   AssistantConfig `mapstructure:"assistant"`
	Upload      UploadConfig    `mapstructure:"upload"`
	Report      ReportConfig    `mapstructure:"report"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ForecastConfig points at the external forecasting service that turns
// a historical segment into a forecast extension.
type ForecastConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
}

// AssistantConfig points at the external text-generation service used
// for the dataset analysis and the chat assistant.
type AssistantConfig struct {
	ServiceURL      string `mapstructure:"service_url"`
	Timeout         int    `mapstructure:"timeout"`
	AnalysisTimeout string `mapstructure:"analysis_timeout"`
}

type UploadConfig struct {
	MaxSizeMB         int      `mapstructure:"max_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type ReportConfig struct {
	Title string `mapstructure:"title"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Forecast.ServiceURL == "" {
		return nil, fmt.Errorf("forecast.service_url must be configured")
	}
	if config.Assistant.ServiceURL == "" {
		return nil, fmt.Errorf("assistant.service_url must be configured")
	}
	if config.Assistant.AnalysisTimeout != "" {
		if _, err := time.ParseDuration(config.Assistant.AnalysisTimeout); err != nil {
			return nil, fmt.Errorf("invalid assistant analysis timeout: %w", err)
		}
	}
	if len(config.Upload.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("upload.allowed_extensions must not be empty")
	}

	return &config, nil
}

// AnalysisTimeoutDuration returns the analysis dispatch deadline.
func (c AssistantConfig) AnalysisTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.AnalysisTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Forecast service
	viper.SetDefault("forecast.service_url", "http://localhost:5001")
	viper.SetDefault("forecast.timeout", 60)

	// Assistant service
	viper.SetDefault("assistant.service_url", "http://localhost:5002")
	viper.SetDefault("assistant.timeout", 60)
	viper.SetDefault("assistant.analysis_timeout", "2m")

	// Upload
	viper.SetDefault("upload.max_size_mb", 16)
	viper.SetDefault("upload.allowed_extensions", []string{".xlsx"})

	// Report
	viper.SetDefault("report.title", "HydroForecast AI Report")
}
