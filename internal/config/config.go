package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string        `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	Environment    string        `mapstructure:"ENV"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	AdminIDs       []int64       `mapstructure:"ADMIN_TELEGRAM_IDS"`
	ReloadInterval time.Duration `mapstructure:"RELOAD_INTERVAL"`
	LogFile        string        `mapstructure:"LOG_FILE"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"` // пусто - встроенные миграции

	// Значения по умолчанию, пока в таблице settings нет строки
	Planning model.Settings
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:         getenv("DB_DSN"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		Environment:   getenv("ENV"),
		Timezone:      getenv("TIMEZONE"),
		LogFile:       getenv("LOG_FILE"),
		MigrationsDir: getenv("MIGRATIONS_DIR"),
		Planning:      model.DefaultSettings(),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Paris"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	admins, err := parseIDs(getenv("ADMIN_TELEGRAM_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse ADMIN_TELEGRAM_IDS: %w", err)
	}
	cfg.AdminIDs = admins

	cfg.ReloadInterval = time.Minute
	if v := getenv("RELOAD_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("parse RELOAD_INTERVAL %q: must be a positive duration", v)
		}
		cfg.ReloadInterval = d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"OPENING_HOUR", &cfg.Planning.OpeningHour},
		{"CLOSING_HOUR", &cfg.Planning.ClosingHour},
		{"SLOT_CAPACITY", &cfg.Planning.SlotCapacity},
		{"TOLERANCE_MINUTES", &cfg.Planning.ToleranceMinutes},
	}
	for _, it := range ints {
		v := getenv(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", it.key, err)
		}
		*it.dst = n
	}
	if v := getenv("PICK_POLICY"); v != "" {
		cfg.Planning.PickPolicy = model.PickPolicy(strings.ToLower(v))
	}
	cfg.Planning = cfg.Planning.Normalize()

	return cfg, nil
}

// Location часовой пояс планирования
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
