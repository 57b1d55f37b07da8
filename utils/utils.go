package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"voluntariado-backend/infrastructure"
	"voluntariado-backend/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTSecret = "your-super-secret-jwt-key-change-this-in-production"

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper.
// A .env file, when present, is loaded into the environment first.
func Load() (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	// Set default values
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	// Handle nested JSON structure from config.json
	flattenNestedConfig(v)

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "Voluntariado Backend")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")

	// JWT defaults
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_expires_in", 24*time.Hour)

	// Storage
	v.SetDefault("storage_driver", "dynamodb")

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	// Cloudinary defaults
	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_api_key", "")
	v.SetDefault("cloudinary_api_secret", "")
	v.SetDefault("upload_max_bytes", 5<<20)

	// SendGrid defaults
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("mail_from_name", "Voluntariado")
	v.SetDefault("mail_from_email", "no-reply@voluntariado.local")

	// PayPal defaults
	v.SetDefault("paypal_client_id", "")
	v.SetDefault("paypal_client_secret", "")
	v.SetDefault("paypal_base_url", "https://api-m.sandbox.paypal.com")
	v.SetDefault("paypal_webhook_id", "")
	v.SetDefault("paypal_return_url", "http://localhost:3000/donaciones/exito")
	v.SetDefault("paypal_cancel_url", "http://localhost:3000/donaciones/cancelado")

	// Rollbar defaults
	v.SetDefault("rollbar_token", "")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"*"})

	// Messaging defaults
	v.SetDefault("message_edit_window", models.DefaultMessageEditWindow)

	// Worker schedules
	v.SetDefault("badge_sweep_schedule", "0 0 3 * * *")
	v.SetDefault("report_schedule", "0 30 2 1 1,4,7,10 *")
	v.SetDefault("token_cleanup_schedule", "@every 10m")

	// Base Path default
	v.SetDefault("basePath", "/api")

	// setup tables to create
	v.SetDefault("tables", infrastructure.BaseTableNames())
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.JWTSecret == defaultJWTSecret && c.AppEnv == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	if c.StorageDriver != "dynamodb" && c.StorageDriver != "memory" {
		return fmt.Errorf("unknown storage_driver %q, expected dynamodb or memory", c.StorageDriver)
	}

	if c.MessageEditWindow <= 0 {
		return fmt.Errorf("message_edit_window must be positive")
	}

	// In production, we should have AWS credentials set
	if c.AppEnv == "production" && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// nestedKeys maps config.json sections onto the flat keys models.Config uses
var nestedKeys = map[string]string{
	"app.name":                  "app_name",
	"app.version":               "app_version",
	"app.env":                   "app_env",
	"app.host":                  "app_host",
	"app.port":                  "app_port",
	"jwt.secret":                "jwt_secret",
	"jwt.expires_in":            "jwt_expires_in",
	"storage.driver":            "storage_driver",
	"aws.region":                "aws_region",
	"aws.access_key_id":         "aws_access_key_id",
	"aws.secret_access_key":     "aws_secret_access_key",
	"aws.dynamodb_endpoint":     "dynamodb_endpoint",
	"aws.dynamodb_table_prefix": "dynamodb_table_prefix",
	"cloudinary.cloud_name":     "cloudinary_cloud_name",
	"cloudinary.api_key":        "cloudinary_api_key",
	"cloudinary.api_secret":     "cloudinary_api_secret",
	"uploads.max_bytes":         "upload_max_bytes",
	"sendgrid.api_key":          "sendgrid_api_key",
	"mail.from_name":            "mail_from_name",
	"mail.from_email":           "mail_from_email",
	"paypal.client_id":          "paypal_client_id",
	"paypal.client_secret":      "paypal_client_secret",
	"paypal.base_url":           "paypal_base_url",
	"paypal.webhook_id":         "paypal_webhook_id",
	"paypal.return_url":         "paypal_return_url",
	"paypal.cancel_url":         "paypal_cancel_url",
	"rollbar.token":             "rollbar_token",
	"logging.level":             "log_level",
	"logging.format":            "log_format",
	"messaging.edit_window":     "message_edit_window",
	"worker.badge_sweep":        "badge_sweep_schedule",
	"worker.reports":            "report_schedule",
	"worker.token_cleanup":      "token_cleanup_schedule",
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	for nested, flat := range nestedKeys {
		if v.IsSet(nested) {
			v.Set(flat, v.Get(nested))
		}
	}

	// CORS section
	if v.IsSet("cors.origins") {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// HashPassword hashes a plain text password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a hashed password with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// CanonicalPairKey identifies the conversation between two users regardless of order
func CanonicalPairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}

// ParseID parses a positive numeric path parameter
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
