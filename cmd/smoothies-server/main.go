package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smoothies/internal/app"
	"smoothies/internal/config"
	"smoothies/internal/server"
	"smoothies/internal/warmer"
)

func main() {
	cfg, err := config.Load()
	must(err)

	a, err := app.Open(cfg)
	must(err)
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w := warmer.NewService(a.Catalog, a.Nutrition, time.Duration(cfg.NutritionWarmEverySec)*time.Second)
	go func() {
		if err := w.Run(ctx); err != nil {
			fmt.Printf("warmer stopped err=%v\n", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(a.Catalog, a.Canon, a.Orders, a.Metrics).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("http server listening addr=%s\n", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			must(err)
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		must(srv.Shutdown(shutdownCtx))
		fmt.Println("http server stopped")
	}
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
