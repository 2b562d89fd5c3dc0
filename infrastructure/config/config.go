package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "todo-backend/pkg/errors"
)

const (
	envTodosTable          = "TODOS_TABLE"
	envAttachmentBucket    = "ATTACHMENT_S3_BUCKET"
	envSignedURLExpiration = "SIGNED_URL_EXPIRATION"
)

// Config holds all application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT"`

	// AWS configuration
	AWSRegion        string `env:"AWS_REGION" validate:"required"`
	TodosTable       string `env:"TODOS_TABLE" validate:"required"`
	AttachmentBucket string `env:"ATTACHMENT_S3_BUCKET" validate:"required"`

	// Signed URL lifetime in seconds, capped at the SigV4 maximum of seven days
	SignedURLExpiration int `env:"SIGNED_URL_EXPIRATION" validate:"gt=0,lte=604800"`

	// Offline (local) development
	IsOffline        bool   `env:"IS_OFFLINE"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT" validate:"url"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics    bool   `env:"ENABLE_METRICS"`
	EnableTracing    bool   `env:"ENABLE_TRACING"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" validate:"required_if=EnableMetrics true"`
}

// configValidator reports failures by environment variable name
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})
	return v
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	expiration, err := requireEnvInt(envSignedURLExpiration)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		TodosTable:          getEnv(envTodosTable, ""),
		AttachmentBucket:    getEnv(envAttachmentBucket, ""),
		SignedURLExpiration: expiration,

		IsOffline:        getEnvBool("IS_OFFLINE", false),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", "http://localhost:8000"),

		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "TodoBackend"),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "gt", "lte":
			messages = append(messages, fmt.Sprintf("%s must be between 1 and 604800 seconds", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewConfigError(strings.Join(messages, "; "))
}

// URLExpiration returns the lifetime of issued upload URLs
func (c *Config) URLExpiration() time.Duration {
	return time.Duration(c.SignedURLExpiration) * time.Second
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// requireEnvInt reads a mandatory integer variable; there is no fallback
func requireEnvInt(key string) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, apperrors.NewConfigError(fmt.Sprintf("%s is required", key))
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.NewConfigError(fmt.Sprintf("%s must be an integer number of seconds", key)).WithCause(err)
	}
	return intVal, nil
}
