package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORDER_MAX_INGREDIENTS", "")
	t.Setenv("CANON_MULTIWORD_LABELS", "")
	t.Setenv("HASH_QUERY", "SELECT hash(?)")
	t.Setenv("NUTRITION_WARM_INTERVAL_SEC", "")
	t.Setenv("NUTRITION_CACHE_TTL_HOURS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OrderMaxIngredients != 5 {
		t.Fatalf("max=%d", cfg.OrderMaxIngredients)
	}
	if cfg.MultiWordLabels != nil {
		t.Fatalf("multiword=%v", cfg.MultiWordLabels)
	}
	if cfg.HashQuery != "SELECT hash(?)" {
		t.Fatalf("hashQuery=%q", cfg.HashQuery)
	}
	if cfg.NutritionWarmEverySec != 0 || cfg.NutritionCacheTTLHrs != 24 {
		t.Fatalf("warm=%d ttl=%d", cfg.NutritionWarmEverySec, cfg.NutritionCacheTTLHrs)
	}
}

func TestLoadLists(t *testing.T) {
	t.Setenv("CANON_MULTIWORD_LABELS", "Dragon Fruit, ,Ugli Fruit ")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("ORDER_REQUIRE_HASH", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.MultiWordLabels) != 2 || cfg.MultiWordLabels[0] != "Dragon Fruit" || cfg.MultiWordLabels[1] != "Ugli Fruit" {
		t.Fatalf("multiword=%q", cfg.MultiWordLabels)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if !cfg.OrderRequireHash {
		t.Fatal("expected OrderRequireHash")
	}
}

func TestLoadRejectsNonPositiveMax(t *testing.T) {
	t.Setenv("ORDER_MAX_INGREDIENTS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRequire(t *testing.T) {
	var cfg Config
	if err := cfg.Require("X", "  "); err == nil {
		t.Fatal("expected error for blank value")
	}
	if err := cfg.Require("X", "v"); err != nil {
		t.Fatal(err)
	}
}
