package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defoltCfgPath = "config/config.json"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverCSV      = "csv"
)

type Config struct {
	Env      string         `json:"env" validate:"required"`
	HTTPAddr string         `json:"http_addr" validate:"required"`
	Source   Source         `json:"source"`
	Kafka    Kafka          `json:"kafka"`
	Log      Log            `json:"log"`
	Analysis map[string]any `json:"analysis"` // плоская карта порогов товарной аналитики
}

// Source описывает, откуда загружаются таблицы заказов и позиций
type Source struct {
	Driver     string      `json:"driver" validate:"oneof=postgres mysql sqlite csv"`
	Host       string      `json:"db_host" validate:"required_if=Driver postgres,required_if=Driver mysql"`
	Port       string      `json:"db_port" validate:"required_if=Driver postgres,required_if=Driver mysql"`
	SQLitePath string      `json:"sqlite_path" validate:"required_if=Driver sqlite"`
	OrdersCSV  string      `json:"orders_csv" validate:"required_if=Driver csv"`
	ItemsCSV   string      `json:"items_csv" validate:"required_if=Driver csv"`
	Timezone   string      `json:"timezone"`
	Creds      Credentials `json:"-"`
}

// Credentials читаются только из окружения
type Credentials struct {
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
}

type Kafka struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `json:"topic" validate:"required_if=Enabled true"`
	GroupID string   `json:"group_id" validate:"required_if=Enabled true"`
}

type Log struct {
	Level      string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
}

// Location returns the zone used for timestamps that carry no offset.
func (s Source) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func (s Source) needsCredentials() bool {
	return s.Driver == DriverPostgres || s.Driver == DriverMySQL
}

// Load reads the JSON file at path, takes database credentials from the environment
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	cfg := Config{
		Log: Log{Level: "info", MaxSizeMB: 1, MaxBackups: 10},
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := env.Parse(&cfg.Source.Creds); err != nil {
		return nil, fmt.Errorf("failed to read credentials from environment: %w", err)
	}
	if cfg.Source.needsCredentials() {
		if cfg.Source.Creds.DBUser == "" || cfg.Source.Creds.DBName == "" {
			return nil, fmt.Errorf("DB_USER and DB_NAME environment variables must be set for driver %s", cfg.Source.Driver)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Source.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("can`t load config, check .env file ", err)
	}

	cfgPath, ok := os.LookupEnv("CONFIG_PATH")
	if !ok {
		cfgPath = defoltCfgPath
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Fatalf("config file by way %s doesn`t exist", cfgPath)
	} else if err != nil {
		log.Fatalf("error %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
