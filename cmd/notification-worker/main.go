package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/cache"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/config"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/events"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/flags"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/notify"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/notification"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/store/dynamo"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/worker"
)

func main() {
	logger.SetLevelFromEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
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

	var dir notification.Directory = dynamo.NewAccountRepo(db, cfg.Tables.Accounts)
	if cfg.Cache.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		dir = cache.NewDirectory(redisClient, dir, cfg.Cache.TTL)
	}

	var smsTwilio notification.SMSSender
	if cfg.Notification.TwilioSID != "" {
		smsTwilio = notify.NewTwilioSender(
			cfg.Notification.TwilioSID,
			cfg.Notification.TwilioToken,
			cfg.Notification.TwilioFrom,
		)
	}

	leads := dynamo.NewLeadRepo(db, cfg.Tables.Leads)
	dispatcher := notification.NewDispatcher(
		dynamo.NewNotificationRepo(db, cfg.Tables.Notifications),
		dir,
		notify.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.Notification.FromEmail, cfg.Notification.FromName),
		notify.NewSNSSender(sns.NewFromConfig(awsCfg), cfg.Notification.SNSSenderID),
		smsTwilio,
		staffRecipients(cfg.Notification.InternalStaff),
	)

	w := worker.NewNotificationWorker(flags.NewLoader(s3Client), cfg.Flags.Source, leads, dispatcher)

	consumer := events.NewConsumer(sqsClient, cfg.Queues.RoutingEventsURL, w.Handle)
	consumer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down notification worker...")

	consumer.Stop()
	cancel()
}

// staffRecipients converts the configured internal roster. Staff are opted
// into every channel they have an address for.
func staffRecipients(staff []config.StaffRecipient) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(staff))
	for _, s := range staff {
		out = append(out, domain.Recipient{
			Type:        domain.RecipientInternal,
			ID:          s.ID,
			Name:        s.Name,
			Email:       s.Email,
			Phone:       s.Phone,
			NotifyEmail: s.Email != "",
			NotifySMS:   s.Phone != "",
		})
	}
	return out
}
