package main

import (
	"context"
	"fmt"
	"os"

	"github.com/natserract/sfrest/pkg/config"
	"github.com/natserract/sfrest/pkg/mirror"
	"github.com/natserract/sfrest/pkg/mirror/postgres"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	sfCfg, err := sfrest.LoadConfig()
	if err != nil {
		logger.Error("Failed to load Salesforce config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load Salesforce config: %v\n", err)
		os.Exit(1)
	}
	appCfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize database connection
	dbCfg, err := postgres.NewConfig()
	if err != nil {
		logger.Error("Invalid database config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Invalid database config: %v\n", err)
		os.Exit(1)
	}
	db, err := postgres.New(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		logger.Error("Failed to initialize schema", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to initialize schema: %v\n", err)
		os.Exit(1)
	}

	// Create Salesforce client and log in
	client := sfrest.NewClientWithLogger(sfCfg, logger)
	if _, err := task.Wait(ctx, client.Login(ctx, appCfg.Username, appCfg.LoginPassword())); err != nil {
		logger.Error("Login failed", zap.Stringer("kind", sfrest.KindOf(err)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Logout()

	syncSvc := mirror.NewSyncService(client, mirror.NewPGStore(db, logger), logger)
	metrics, err := syncSvc.Mirror(ctx, appCfg.MirrorObject, appCfg.MirrorQuery)
	if err != nil {
		logger.Error("Failed to mirror records", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mirror job %s:\n", metrics.JobID)
	fmt.Printf("  %s: %d succeeded, %d failed\n", appCfg.MirrorObject, metrics.Succeeded, metrics.Failed)
}
