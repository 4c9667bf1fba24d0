package cfg

import (
	"fmt"
	"os"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	sourceMu sync.RWMutex
	source   *koanf.Koanf
)

// loadSource собирает значения из YAML-файла (если задан) и переменных окружения.
// Окружение имеет приоритет. Ключи в файле совпадают с именами переменных: HTTP_PORT: "5000".
func loadSource(path string) error {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	sourceMu.Lock()
	source = k
	sourceMu.Unlock()

	return nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	sourceMu.RLock()
	defer sourceMu.RUnlock()
	if source == nil {
		return ""
	}
	return source.String(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key); value != "" {
		return value
	}

	return defaultValue
}
