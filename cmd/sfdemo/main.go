package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/natserract/sfrest/pkg/config"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/salesforce/sobjects"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

func main() {
	// Optional Apex REST path to call after the CRUD round trip
	apexPath := ""
	if len(os.Args) > 1 {
		apexPath = os.Args[1]
	}

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
		fail(logger, "Failed to load Salesforce config", err)
	}
	appCfg, err := config.Load()
	if err != nil {
		fail(logger, "Failed to load config", err)
	}

	client := sfrest.NewClientWithLogger(sfCfg, logger)
	ctx := context.Background()

	session, err := task.Wait(ctx, client.Login(ctx, appCfg.Username, appCfg.LoginPassword()))
	if err != nil {
		fail(logger, "Login failed ("+sfrest.KindOf(err).String()+")", err)
	}
	fmt.Printf("Logged in to %s\n", session.InstanceURL())

	cases, err := task.Wait(ctx, sfrest.QueryRecords[sobjects.Case](ctx, client, sobjects.CaseBaseQuery+" LIMIT 5"))
	if err != nil {
		fail(logger, "Query failed", err)
	}
	for _, c := range cases {
		fmt.Printf("  %s  %-12s %s\n", c.ID(), c.Status, c.Subject)
	}

	created, err := task.Wait(ctx, sfrest.Insert(ctx, client, sobjects.NewCase("Created by sfdemo", "New")))
	if err != nil {
		fail(logger, "Insert failed", err)
	}
	fmt.Printf("Inserted case %s\n", created.ID())

	// Update the case and read its feed on one loop.
	created.Status = "Working"
	update := client.Update(ctx, created)
	feed := client.GetFeed(ctx, created.ID())
	loop := task.NewLoop(logger)
	loop.Add(update, feed)
	if err := loop.Run(ctx); err != nil {
		fail(logger, "Loop aborted", err)
	}
	if _, err := update.Value(); err != nil {
		fail(logger, "Update failed", err)
	}
	fmt.Printf("Updated case %s to %s\n", created.ID(), created.Status)
	if body, err := feed.Value(); err != nil {
		logger.Warn("Failed to read feed", zap.Error(err))
	} else {
		fmt.Printf("Feed: %s\n", body)
	}

	if apexPath != "" {
		body, err := task.Wait(ctx, client.RunCustomOperation(ctx, http.MethodGet, apexPath, nil, ""))
		if err != nil {
			logger.Warn("Custom operation failed", zap.String("path", apexPath), zap.Error(err))
		} else {
			fmt.Printf("Apex REST %s: %s\n", apexPath, body)
		}
	}

	if _, err := task.Wait(ctx, client.Delete(ctx, created)); err != nil {
		fail(logger, "Delete failed", err)
	}
	fmt.Printf("Deleted case %s\n", created.ID())

	client.Logout()
}

func fail(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	_ = logger.Sync()
	os.Exit(1)
}
