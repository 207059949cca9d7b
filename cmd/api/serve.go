package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/cardcycle/internal/budget/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/cache"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	cardStore "github.com/MrJamesThe3rd/cardcycle/internal/card/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	categoryStore "github.com/MrJamesThe3rd/cardcycle/internal/category/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/database"
	"github.com/MrJamesThe3rd/cardcycle/internal/export"
	apiHttp "github.com/MrJamesThe3rd/cardcycle/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/budget"
	cardHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/card"
	categoryHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	ruleHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/rule"
	summaryHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/cardcycle/internal/http/transaction"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/cardcycle/internal/rule/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
	txStore "github.com/MrJamesThe3rd/cardcycle/internal/transaction/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.FromConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	authenticator := auth.New(cfg.Auth.Secret, cfg.Auth.Issuer)

	converter := currency.NewConverter(
		currency.NewHTTPSource(cfg.Rates.BaseURL, cfg.Rates.Timeout),
		cache.NewTTL[decimal.Decimal](cfg.Rates.CacheTTL, cfg.Rates.CacheCleanup),
	)

	var (
		cardService        = card.NewService(cardStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), converter, transaction.WithLocation(loc))
		budgetService      = budget.NewService(budgetStore.New(db), cardService, transactionService)
		summaryService     = summary.NewService(cardService, transactionService, categoryService)
		ruleService        = rule.NewService(ruleStore.New(db), categoryService)
		importService      = importer.NewService(importer.WithLocation(loc))
		exportService      = export.NewService(transactionService, categoryService, cardService)
	)

	router := apiHttp.New(apiHttp.Handlers{
		Cards:        cardHandler.NewHandler(cardService, loc),
		Categories:   categoryHandler.NewHandler(categoryService),
		Transactions: txHandler.NewHandler(transactionService, loc),
		Budget:       budgetHandler.NewHandler(budgetService, loc),
		Summary:      summaryHandler.NewHandler(summaryService, loc),
		Import:       importHandler.NewHandler(importService, transactionService, ruleService, cardService),
		Rules:        ruleHandler.NewHandler(ruleService),
		Export:       exportHandler.NewHandler(exportService, loc),
	}, apiHttp.Options{
		Authenticator:  authenticator,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Health:         db.PingContext,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	default:
	}

	slog.Info("server stopped")

	return nil
}
