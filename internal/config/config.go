package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	NutritionAPIBaseURL   string
	NutritionTimeoutMs    int
	NutritionRateLimitRPS int
	NutritionCacheDir     string
	NutritionCacheTTLHrs  int
	NutritionWarmEverySec int

	MultiWordLabels []string
	HashQuery       string

	OrderMaxIngredients int
	OrderRequireHash    bool

	KafkaBrokers     []string
	KafkaOrdersTopic string

	HTTPAddr string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "smoothies.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		NutritionAPIBaseURL:   getEnv("NUTRITION_API_BASE_URL", "https://my.smoothiefroot.com/api"),
		NutritionTimeoutMs:    getEnvInt("NUTRITION_TIMEOUT_MS", 15000),
		NutritionRateLimitRPS: getEnvInt("NUTRITION_RATE_LIMIT_RPS", 10),
		NutritionCacheDir:     getEnv("NUTRITION_CACHE_DIR", ""),
		NutritionCacheTTLHrs:  getEnvInt("NUTRITION_CACHE_TTL_HOURS", 24),
		NutritionWarmEverySec: getEnvInt("NUTRITION_WARM_INTERVAL_SEC", 0),

		MultiWordLabels: getEnvList("CANON_MULTIWORD_LABELS", nil),
		HashQuery:       getEnv("HASH_QUERY", "SELECT hash(?)"),

		OrderMaxIngredients: getEnvInt("ORDER_MAX_INGREDIENTS", 5),
		OrderRequireHash:    getEnvBool("ORDER_REQUIRE_HASH", false),

		KafkaBrokers:     getEnvList("KAFKA_BROKERS", nil),
		KafkaOrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "smoothies.orders"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	if cfg.OrderMaxIngredients <= 0 {
		return Config{}, fmt.Errorf("ORDER_MAX_INGREDIENTS must be positive, got %d", cfg.OrderMaxIngredients)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blank items.
func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
