// Package config загружает настройки приложения: значения по умолчанию,
// затем YAML-файл, затем .env и переменные окружения.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"

	defaultSecret = "your_secret_key"
)

// Config - настройки сервера и хранилища.
type Config struct {
	Addr          string        `yaml:"addr"`
	DataDir       string        `yaml:"data_dir"`
	Storage       string        `yaml:"storage"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

// Default возвращает настройки по умолчанию: порт 7540, JSON-файлы в текущем каталоге.
func Default() Config {
	return Config{
		Addr:          ":7540",
		DataDir:       ".",
		Storage:       StorageJSON,
		SessionSecret: defaultSecret,
		SessionTTL:    24 * time.Hour,
	}
}

// Load читает конфигурацию. Пустой path означает PLANNER_CONFIG или config.yaml;
// отсутствие файла не ошибка.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("не удалось прочитать .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("PLANNER_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("не удалось разобрать %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	// TODO_PORT оставлен для совместимости со старым запуском.
	if port := os.Getenv("TODO_PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("неверный TODO_PORT %q: %w", port, err)
		}
		c.Addr = ":" + port
	}
	if v := os.Getenv("PLANNER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("PLANNER_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("PLANNER_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("PLANNER_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("PLANNER_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("неверный PLANNER_SESSION_TTL %q: %w", v, err)
		}
		c.SessionTTL = ttl
	}
	if v := os.Getenv("PLANNER_SECURE_COOKIES"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("неверный PLANNER_SECURE_COOKIES %q: %w", v, err)
		}
		c.SecureCookies = secure
	}
	return nil
}

// Validate проверяет хранилище и секрет сессий.
func (c Config) Validate() error {
	if c.Storage != StorageJSON && c.Storage != StorageSQLite {
		return fmt.Errorf("неизвестное хранилище %q: ожидается %s или %s", c.Storage, StorageJSON, StorageSQLite)
	}
	if c.SessionSecret == "" {
		return errors.New("пустой session_secret")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl должен быть больше нуля")
	}
	return nil
}

// DefaultSecret сообщает, что секрет сессий не был задан явно.
func (c Config) DefaultSecret() bool {
	return c.SessionSecret == defaultSecret
}

// Пути к файлам данных внутри DataDir.
func (c Config) TasksFile() string { return filepath.Join(c.DataDir, "tasks.json") }
func (c Config) UsersFile() string { return filepath.Join(c.DataDir, "users.json") }
func (c Config) DiaryDir() string { return filepath.Join(c.DataDir, "diaries") }
func (c Config) SQLiteFile() string { return filepath.Join(c.DataDir, "planner.db") }
