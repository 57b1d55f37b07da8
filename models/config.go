package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// JWT
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// Storage driver: "dynamodb" or "memory"
	StorageDriver string `mapstructure:"storage_driver"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Cloudinary
	CloudinaryCloudName string `mapstructure:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `mapstructure:"cloudinary_api_key"`
	CloudinaryAPISecret string `mapstructure:"cloudinary_api_secret"`
	UploadMaxBytes      int64  `mapstructure:"upload_max_bytes"`

	// SendGrid
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	MailFromName   string `mapstructure:"mail_from_name"`
	MailFromEmail  string `mapstructure:"mail_from_email"`

	// PayPal
	PayPalClientID     string `mapstructure:"paypal_client_id"`
	PayPalClientSecret string `mapstructure:"paypal_client_secret"`
	PayPalBaseURL      string `mapstructure:"paypal_base_url"`
	PayPalWebhookID    string `mapstructure:"paypal_webhook_id"`
	PayPalReturnURL    string `mapstructure:"paypal_return_url"`
	PayPalCancelURL    string `mapstructure:"paypal_cancel_url"`

	// Rollbar
	RollbarToken string `mapstructure:"rollbar_token"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Messaging
	MessageEditWindow time.Duration `mapstructure:"message_edit_window"`

	// Worker schedules (robfig/cron, 6 fields with seconds)
	BadgeSweepSchedule   string `mapstructure:"badge_sweep_schedule"`
	ReportSchedule       string `mapstructure:"report_schedule"`
	TokenCleanupSchedule string `mapstructure:"token_cleanup_schedule"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	Tables []string `mapstructure:"tables"`
}

// UsesMemoryStorage reports whether the in-process store is selected
func (c *Config) UsesMemoryStorage() bool {
	return c.StorageDriver == "memory"
}

// TableName returns the prefixed DynamoDB table name
func (c *Config) TableName(base string) string {
	return c.DynamoDBTablePrefix + "_" + base
}
