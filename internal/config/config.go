package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile - YAML-файл с настройками, проверяемый по умолчанию
const DefaultConfigFile = "taskboard.yaml"

// DefaultEnvFiles проверяются по порядку, загружается первый найденный
var DefaultEnvFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	HTTPPort     string        `yaml:"http_port"`
	GRPCPort     string        `yaml:"grpc_port"`
	DatabasePath string        `yaml:"database_path"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	PageSize     int           `yaml:"page_size"`
	CacheMaxCost int64         `yaml:"cache_max_cost"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

func Defaults() Config {
	return Config{
		HTTPPort:     "8080",
		GRPCPort:     "8081",
		DatabasePath: "taskboard.db",
		TokenTTL:     60 * time.Minute,
		PageSize:     10,
		CacheMaxCost: 1 << 16,
		CORSOrigins:  []string{"*"},
	}
}

// Load читает настройки в порядке: значения по умолчанию < YAML < .env < окружение
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile, DefaultEnvFiles...)
}

// LoadFrom читает YAML по пути yamlPath и первый найденный из envFiles.
// Отсутствие файлов ошибкой не считается.
func LoadFrom(yamlPath string, envFiles ...string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	// godotenv не перезаписывает уже заданные переменные окружения
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			log.Printf("Загружен файл с переменными окружения: %s", file)
			break
		}
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.HTTPPort, "HTTP_PORT")
	setString(&cfg.GRPCPort, "GRPC_PORT")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setDuration(&cfg.TokenTTL, "TOKEN_TTL")
	setInt(&cfg.PageSize, "PAGE_SIZE")
	setInt64(&cfg.CacheMaxCost, "CACHE_MAX_COST")
	setList(&cfg.CORSOrigins, "CORS_ORIGINS")
}

func validate(cfg *Config) error {
	if cfg.HTTPPort == "" {
		return errors.New("http_port is required")
	}
	if cfg.GRPCPort == "" {
		return errors.New("grpc_port is required")
	}
	if cfg.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if cfg.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if cfg.PageSize < 1 || cfg.PageSize > 500 {
		return errors.New("page_size must be between 1 and 500")
	}
	if cfg.CacheMaxCost < 1 {
		return errors.New("cache_max_cost must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// setDuration принимает как "90m", так и целое число минут
func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Minute
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
