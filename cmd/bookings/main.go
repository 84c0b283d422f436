package main

import (
	"microbus/internal/bookings/handler"
	"microbus/internal/bookings/repository"
	"microbus/internal/bookings/service"
	"microbus/internal/bookings/validator"
	"microbus/pkg/app"
	"microbus/pkg/config"
	"microbus/pkg/kafka"
	kafka_config "microbus/pkg/kafka/config"
	"microbus/pkg/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	defer producer.Close()

	bookingService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.JWTSecret, cfg.Log),
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

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewResourceLockRepository(cfg),
		repository.NewUserDirectory(cfg),
		validator.NewBookingValidator(cfg.Log),
		producer,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
