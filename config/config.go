package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    int
	JWTSecret     string
	TokenTTLHours int
	Timezone      string
	Sheets        SheetsConfig
	Storage       StorageConfig
	Events        EventsConfig
}

// SheetsConfig points at the backing spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
}

// StorageConfig selects and configures the attachment backend.
type StorageConfig struct {
	Backend string // "drive", "gcs" or "minio"
	Drive   DriveConfig
	GCS     GCSConfig
	Minio   MinioConfig
}

type DriveConfig struct {
	CredentialsFile string
	FolderID        string
}

type GCSConfig struct {
	CredentialsFile string
	ProjectID       string
	Bucket          string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// EventsConfig selects and configures the optional record-event broker.
type EventsConfig struct {
	Backend  string // "pubsub", "rabbitmq" or "" (disabled)
	Channel  string
	PubSub   PubSubConfig
	RabbitMQ RabbitMQConfig
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	credsFile := getEnv("GOOGLE_CREDENTIALS_FILE", "")

	return Config{
		ServerPort:    getEnvInt("SERVER_PORT", 8080),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 24),
		Timezone:      getEnv("TIMEZONE", "UTC"),
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsFile: credsFile,
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "drive"),
			Drive: DriveConfig{
				CredentialsFile: credsFile,
				FolderID:        getEnv("DRIVE_FOLDER_ID", ""),
			},
			GCS: GCSConfig{
				CredentialsFile: credsFile,
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				Bucket:          getEnv("GCS_BUCKET", ""),
			},
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "attachments"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", ""),
			Channel: getEnv("EVENTS_CHANNEL", "sheet-events"),
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    credsFile,
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTODELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "1" || valueStr == "true" || valueStr == "yes"
	}
	return defaultValue
}
