package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/api"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/config"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/store/dynamo"
)

func main() {
	logger.SetLevelFromEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	awsCfg, err := dynamo.LoadAWSConfig(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	db := dynamodb.NewFromConfig(awsCfg)

	server := api.NewServer(
		dynamo.NewUnassignedRepo(db, cfg.Tables.Unassigned),
		dynamo.NewNotificationRepo(db, cfg.Tables.Notifications),
		dynamo.NewLeadRepo(db, cfg.Tables.Leads),
	)

	srv := &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      server.Routes(cfg.Ops.AllowedOrigins),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("ops API listening on %s", cfg.Ops.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down ops API...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
