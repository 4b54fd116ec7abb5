package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayengine/internal/app/commands"
	costsapp "stayengine/internal/app/handlers/costs"
	rulesapp "stayengine/internal/app/handlers/rules"
	slotsapp "stayengine/internal/app/handlers/slots"
	"stayengine/internal/app/middleware"
	appoutbox "stayengine/internal/app/outbox"
	"stayengine/internal/app/queries"
	"stayengine/internal/app/uow"
	domainproperty "stayengine/internal/domain/property"
	kafkabroker "stayengine/internal/infra/broker/kafka"
	"stayengine/internal/infra/config"
	mongodb "stayengine/internal/infra/db/mongo"
	ginserver "stayengine/internal/infra/http/gin"
	"stayengine/internal/infra/obs"
	infraoutbox "stayengine/internal/infra/outbox"
	"stayengine/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	metrics := obs.NewMetrics()
	app.handlers.Costs = ginserver.CostHandler{Queries: app.queryBus, Metrics: metrics}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("PROPERTY_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "properties.json")
	}
	if err := loadPropertyFixtures(ctx, fixturesPath, app.seedProperty, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if app.close != nil {
			app.close()
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	queryBus queries.Bus

	seedProperty func(ctx context.Context, prop *domainproperty.Property) error
	ready        func() error
	worker       *infraoutbox.Worker
	close        func()
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		factory      uow.UoWFactory
		outboxStore  appoutbox.Outbox
		seedProperty func(ctx context.Context, prop *domainproperty.Property) error
		ready        = func() error { return nil }
		worker       *infraoutbox.Worker
		closeFn      func()
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("connect mongo: %w", err)
		}
		propsRepo := mongodb.NewPropertyRepository(client.DB)
		slotsRepo := mongodb.NewSlotRepository(client.DB)
		rulesRepo := mongodb.NewRuleRepository(client.DB)
		factory = mongodb.Factory{
			DB:             client.DB,
			PropertiesRepo: propsRepo,
			SlotsRepo:      slotsRepo,
			RulesRepo:      rulesRepo,
		}
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		seedProperty = propsRepo.Save
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("connect kafka: %w", err)
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				ID:          uuid.NewString(),
				Backoff:     cfg.RetryBackoff,
			}
			closeFn = func() {
				if err := producer.Close(); err != nil {
					logger.Warn("kafka producer close failed", "error", err)
				}
			}
		} else {
			logger.Warn("KAFKA_BROKERS not set, outbox events will accumulate unsent")
		}
	default:
		propsRepo := memory.NewPropertyRepository()
		factory = memory.Factory{
			PropertiesRepo: propsRepo,
			SlotsRepo:      memory.NewSlotRepository(),
			RulesRepo:      memory.NewRuleRepository(),
		}
		outboxStore = memory.NewOutbox()
		seedProperty = func(ctx context.Context, prop *domainproperty.Property) error {
			propsRepo.Seed(prop)
			return nil
		}
	}

	idStore := memory.NewIdempotencyStore()
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, slotsapp.CreateSlotCommand{}.Key(), &slotsapp.CreateSlotHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, slotsapp.CreateBulkSlotsCommand{}.Key(), &slotsapp.CreateBulkSlotsHandler{
		Logger: logger, UoWFactory: factory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, slotsapp.UpdateSlotCommand{}.Key(), &slotsapp.UpdateSlotHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, slotsapp.DeleteSlotCommand{}.Key(), &slotsapp.DeleteSlotHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rulesapp.CreateRuleCommand{}.Key(), &rulesapp.CreateRuleHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rulesapp.UpdateRuleCommand{}.Key(), &rulesapp.UpdateRuleHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rulesapp.DeleteRuleCommand{}.Key(), &rulesapp.DeleteRuleHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rulesapp.ToggleRuleCommand{}.Key(), &rulesapp.ToggleRuleHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, slotsapp.ListSlotsQuery{}.Key(), &slotsapp.ListSlotsHandler{
		Logger: logger, UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, rulesapp.ListRulesQuery{}.Key(), &rulesapp.ListRulesHandler{
		Logger: logger, UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, rulesapp.GetRuleQuery{}.Key(), &rulesapp.GetRuleHandler{
		Logger: logger, UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, costsapp.CalculateCostQuery{}.Key(), &costsapp.CalculateCostHandler{
		Logger: logger, UoWFactory: factory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	return application{
		handlers: ginserver.Handlers{
			Slots: ginserver.SlotHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Rules: ginserver.RuleHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		},
		queryBus:     queryBusWithMiddleware,
		seedProperty: seedProperty,
		ready:        ready,
		worker:       worker,
		close:        closeFn,
	}, nil
}

type propertyFixture struct {
	ID                    string `json:"id"`
	OwnerID               string `json:"owner_id"`
	Status                string `json:"status"`
	BasePrice             string `json:"base_price"`
	Currency              string `json:"currency"`
	DynamicPricingEnabled bool   `json:"dynamic_pricing_enabled"`
}

// loadPropertyFixtures seeds the property catalog this engine prices against.
// Properties are owned by an upstream service in production; fixtures stand in
// for its feed during local runs.
func loadPropertyFixtures(ctx context.Context, path string, seed func(ctx context.Context, prop *domainproperty.Property) error, logger *slog.Logger) error {
	if seed == nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		price, err := decimal.NewFromString(fx.BasePrice)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		status := domainproperty.Status(fx.Status)
		if status == "" {
			status = domainproperty.StatusActive
		}
		currency := fx.Currency
		if currency == "" {
			currency = "EUR"
		}
		prop := &domainproperty.Property{
			ID:                    domainproperty.PropertyID(fx.ID),
			OwnerID:               fx.OwnerID,
			Status:                status,
			BasePrice:             price,
			Currency:              currency,
			DynamicPricingEnabled: fx.DynamicPricingEnabled,
		}
		if err := seed(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", prop.ID)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
