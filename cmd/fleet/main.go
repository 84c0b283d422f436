package main

import (
	"microbus/internal/fleet/handler"
	"microbus/internal/fleet/repository"
	"microbus/internal/fleet/service"
	"microbus/internal/fleet/validator"
	"microbus/pkg/app"
	"microbus/pkg/config"
	"microbus/pkg/kafka"
	kafka_config "microbus/pkg/kafka/config"
	"microbus/pkg/middleware"
)

const ServiceName = "fleet"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Fleet service")

	producer := initProducer(cfg)
	defer producer.Close()

	issueService, maintenanceService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHandler(
			handler.NewIssueHandler(issueService, cfg.JWTSecret, cfg.Log),
			handler.NewMaintenanceHandler(maintenanceService, cfg.JWTSecret, cfg.Log),
		),
		middleware.DefaultPhoneExtractor,
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, cfg.NotificationsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) (service.IssueService, service.MaintenanceService) {
	users := repository.NewUserDirectory(cfg)

	issueService := service.NewIssueService(
		repository.NewMongoIssueRepository(cfg),
		users,
		validator.NewIssueValidator(cfg.Log),
		producer,
		cfg,
	)
	maintenanceService := service.NewMaintenanceService(
		repository.NewMongoMaintenanceRepository(cfg),
		users,
		cfg,
	)

	cfg.Log.Info("Fleet services initialized", "database", cfg.MongoDatabaseName)
	return issueService, maintenanceService
}
