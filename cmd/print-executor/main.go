package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fondaapp/print-fulfillment/internal/config"
	"github.com/fondaapp/print-fulfillment/internal/dispatch"
	"github.com/fondaapp/print-fulfillment/internal/executor"
	"github.com/fondaapp/print-fulfillment/internal/notify"
	"github.com/fondaapp/print-fulfillment/internal/printer"
	"github.com/fondaapp/print-fulfillment/internal/printjob"
	"github.com/fondaapp/print-fulfillment/internal/render"
	"github.com/fondaapp/print-fulfillment/internal/store"
	"github.com/fondaapp/print-fulfillment/shared/logger"
	"github.com/fondaapp/print-fulfillment/shared/postgresql"
	"github.com/fondaapp/print-fulfillment/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("PRINT_EXECUTOR_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/print-executor/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateExecutor(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting print executor",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	jobStore := store.New(dbClient.GetDB(), appLogger.Logger)

	renderer := render.New(render.BusinessInfo{
		Name:    cfg.Business.Name,
		TaxID:   cfg.Business.TaxID,
		Address: cfg.Business.Address,
		Phone:   cfg.Business.Phone,
		Footer:  cfg.Business.Footer,
	})
	printers := printer.NewManager(printerConfig(&cfg.Printing), appLogger.Logger)
	dispatcher := dispatch.New(renderer, printers, appLogger.Logger)

	exec := executor.New(&executor.Config{
		Store:        jobStore,
		Dispatcher:   dispatcher,
		Logger:       appLogger.Logger,
		PollInterval: cfg.Executor.PollInterval.Std(),
		BatchSize:    cfg.Executor.BatchSize,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional RabbitMQ consumer: notifications shortcut the poll interval,
	// the durable queue stays authoritative.
	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		appLogger.Info("RabbitMQ connection established")

		consumer := notify.NewConsumer(rabbitClient, exec, appLogger.Logger, exec.ID())
		go func() {
			if err := consumer.Run(ctx); err != nil {
				appLogger.Error("Notification consumer stopped",
					slog.Any("error", err),
				)
			}
		}()
	} else {
		appLogger.Info("RabbitMQ disabled, relying on polling alone")
	}

	// Start executor in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := exec.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Print executor started successfully",
		slog.String("executor_id", exec.ID()),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Executor error",
			slog.Any("error", err),
		)
		return err
	}

	// Cancel context to stop the executor and consumer
	cancel()

	cleanup := func() {
		if dbClient != nil {
			dbClient.Close()
		}
		if rabbitClient != nil {
			rabbitClient.Close()
		}
	}
	cleanup()

	appLogger.Info("Print executor shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime.Std(),
		ConnMaxIdleTime: cfg.ConnMaxIdleTime.Std(),
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval.Std(),
		Heartbeat:          cfg.Connection.Heartbeat.Std(),
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout.Std(),
		PrefetchCount:      cfg.Consumer.PrefetchCount,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// printerConfig converts yaml printer targets into the manager's config.
func printerConfig(cfg *config.PrintingConfig) printer.Config {
	targets := make(map[printjob.Target]printer.TargetConfig, len(cfg.Targets))
	for name, t := range cfg.Targets {
		targets[printjob.Target(name)] = printer.TargetConfig{
			Kind:    printer.TransportKind(t.Kind),
			Path:    t.Path,
			Host:    t.Host,
			Port:    t.Port,
			Timeout: t.Timeout.Std(),
		}
	}
	return printer.Config{Targets: targets}
}
