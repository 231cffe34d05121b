package app

import (
	"errors"
	"fmt"
	"time"

	"smoothies/internal/canon"
	"smoothies/internal/catalog"
	"smoothies/internal/config"
	"smoothies/internal/metrics"
	"smoothies/internal/nutrition"
	"smoothies/internal/orders"
	"smoothies/internal/storage"
)

// App holds the services shared by the CLI and the HTTP server.
type App struct {
	Config    config.Config
	DB        *storage.DB
	Catalog   *catalog.Service
	Canon     *canon.Canonicalizer
	Nutrition *nutrition.Client
	Orders    *orders.Service
	Metrics   *metrics.Registry

	closers []func() error
}

// Open wires every service from cfg. An empty catalog is seeded first so the
// multi-word allow-list can be derived from it.
func Open(cfg config.Config) (*App, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, Metrics: metrics.NewRegistry()}
	a.closers = append(a.closers, db.Close)

	if err := a.ensureCatalog(); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Catalog = catalog.NewService(db)
	multiWord := cfg.MultiWordLabels
	if len(multiWord) == 0 {
		multiWord, err = a.Catalog.MultiWordLabels()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	a.Canon = canon.New(multiWord, db.Hasher(cfg.HashQuery))

	nutritionOpts := []nutrition.Option{nutrition.WithMetrics(a.Metrics)}
	if cfg.NutritionCacheDir != "" {
		cache, err := nutrition.OpenPebbleCache(cfg.NutritionCacheDir, time.Duration(cfg.NutritionCacheTTLHrs)*time.Hour)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open nutrition cache: %w", err)
		}
		a.closers = append(a.closers, cache.Close)
		nutritionOpts = append(nutritionOpts, nutrition.WithCache(cache))
	}
	a.Nutrition = nutrition.NewClient(cfg, nutritionOpts...)

	orderOpts := []orders.Option{orders.WithNutrition(a.Nutrition), orders.WithMetrics(a.Metrics)}
	if len(cfg.KafkaBrokers) > 0 {
		pub := orders.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		a.closers = append(a.closers, pub.Close)
		orderOpts = append(orderOpts, orders.WithPublisher(pub))
	}
	a.Orders = orders.NewService(db, a.Catalog, a.Canon, cfg, orderOpts...)

	return a, nil
}

func (a *App) ensureCatalog() error {
	count, err := a.DB.CountFruitOptions()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	res, err := catalog.NewBootstrapService(a.DB).Bootstrap(catalog.DefaultSearchTerms)
	if err != nil {
		return err
	}
	fmt.Printf("catalog seeded fruits=%d overrides=%d\n", res.Seeded, res.Overrides)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
