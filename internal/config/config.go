package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Client   ClientConfig
	Capture  CaptureConfig
}

type ServerConfig struct {
	Port   string
	Env    string
	APIKey string // shared key checked on the shipping endpoints
}

type StoreConfig struct {
	Driver string // "memory" or "postgres"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// DSN builds a pgx-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}

type ClientConfig struct {
	DataDir    string // directory holding the on-device sqlite file
	FramesDir  string // camera frame source
	APIBaseURL string
	APIKey     string
}

// CaptureConfig holds the submit thresholds. The snapshot count per
// capture mode is deliberately configurable rather than hard-coded.
type CaptureConfig struct {
	PhotoThreshold   int // photos before auto-submit in photo mode
	BarcodeThreshold int // photos needed when a barcode is present
	BatchLimit       int // hard cap on images per submission
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SHIPPING_API_KEY", "")
	viper.SetDefault("STORE_DRIVER", "memory")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("CLIENT_DATA_DIR", ".")
	viper.SetDefault("CLIENT_FRAMES_DIR", "")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("API_KEY", "")
	viper.SetDefault("PHOTO_THRESHOLD", 3)
	viper.SetDefault("BARCODE_THRESHOLD", 1)
	viper.SetDefault("BATCH_LIMIT", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:   viper.GetString("SERVER_PORT"),
			Env:    viper.GetString("SERVER_ENV"),
			APIKey: viper.GetString("SHIPPING_API_KEY"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Client: ClientConfig{
			DataDir:    viper.GetString("CLIENT_DATA_DIR"),
			FramesDir:  viper.GetString("CLIENT_FRAMES_DIR"),
			APIBaseURL: viper.GetString("API_BASE_URL"),
			APIKey:     viper.GetString("API_KEY"),
		},
		Capture: CaptureConfig{
			PhotoThreshold:   viper.GetInt("PHOTO_THRESHOLD"),
			BarcodeThreshold: viper.GetInt("BARCODE_THRESHOLD"),
			BatchLimit:       viper.GetInt("BATCH_LIMIT"),
		},
	}
}
