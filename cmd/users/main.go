package main

import (
	"microbus/internal/users/handler"
	"microbus/internal/users/repository"
	"microbus/internal/users/service"
	"microbus/internal/users/validator"
	"microbus/pkg/app"
	"microbus/pkg/config"
	"microbus/pkg/kafka"
	kafka_config "microbus/pkg/kafka/config"
	"microbus/pkg/middleware"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Users service")

	producer := initProducer(cfg)
	defer producer.Close()

	authService, userService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHandler(
			handler.NewAuthHandler(authService, cfg.JWTSecret, cfg.Log),
			handler.NewUserHandler(userService, cfg.JWTSecret, cfg.Log),
		),
		// PIN endpoints are unauthenticated, so the rate limit keys on the
		// phone number inside the request body.
		middleware.PinPhoneExtractor,
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

func initServices(cfg *config.Config, producer *kafka.Producer) (service.AuthService, service.UserService) {
	userRepo := repository.NewMongoUserRepository(cfg)
	accessLogRepo := repository.NewAccessLogRepository(cfg)

	authService := service.NewAuthService(userRepo, accessLogRepo, producer, cfg)
	userService := service.NewUserService(
		userRepo,
		accessLogRepo,
		validator.NewUserValidator(cfg.Log),
		producer,
		cfg,
	)

	cfg.Log.Info("User services initialized", "database", cfg.MongoDatabaseName)
	return authService, userService
}
