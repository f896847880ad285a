package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/config"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/events"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/flags"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/assignment"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/store/dynamo"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/worker"
)

func main() {
	logger.SetLevelFromEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Queues.LeadEventsURL == "" {
		log.Fatal("LEAD_EVENTS_QUEUE_URL is required")
	}
	if cfg.Queues.RoutingEventsURL == "" {
		log.Fatal("ROUTING_EVENTS_QUEUE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	db := dynamodb.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)

	engine := assignment.NewEngine(
		dynamo.NewLeadRepo(db, cfg.Tables.Leads),
		dynamo.NewRuleRepo(db, cfg.Tables.Rules),
		assignment.NewCapLedger(dynamo.NewCounterRepo(db, cfg.Tables.Counters)),
		dynamo.NewUnassignedRepo(db, cfg.Tables.Unassigned),
		dynamo.NewAccountRepo(db, cfg.Tables.Accounts),
		events.NewPublisher(sqsClient, cfg.Queues.RoutingEventsURL),
	)

	w := worker.NewAssignmentWorker(flags.NewLoader(s3Client), cfg.Flags.Source, engine)

	consumer := events.NewConsumer(sqsClient, cfg.Queues.LeadEventsURL, w.Handle)
	consumer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down assignment worker...")

	consumer.Stop()
	cancel()
}
