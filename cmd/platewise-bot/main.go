package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"platewise/internal/alternatives"
	"platewise/internal/clipper"
	"platewise/internal/config"
	"platewise/internal/credits"
	"platewise/internal/database"
	"platewise/internal/gen"
	"platewise/internal/grocery"
	"platewise/internal/llm"
	"platewise/internal/logging"
	"platewise/internal/mealplan"
	"platewise/internal/payments"
	"platewise/internal/recipes"
	"platewise/internal/suggest"
	"platewise/internal/telegram"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var textGen llm.TextGenerator
	switch cfg.Provider {
	case "groq":
		textGen = llm.NewGroqClient(cfg, cfg.GroqModel, 0.3)
	default:
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		if closer, ok := gemini.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = gemini
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	invoker := gen.NewInvoker(textGen, cfg.GenerationTimeout)
	guard := gen.NewInflightGuard()
	creditStore := credits.NewStore(db.SQL)
	usageStore := usage.NewStore(db.SQL, logger)
	recipeRepo := recipes.NewRepository(db.SQL)

	planService := mealplan.NewService(invoker, guard, creditStore, usageStore, mealplan.NewRepository(db.SQL), logger)
	recipeService := recipes.NewService(invoker, guard, creditStore, usageStore, recipeRepo, logger)
	altService := alternatives.NewService(invoker, guard, creditStore, usageStore, logger)
	groceryService := grocery.NewService(invoker, guard, creditStore, usageStore, grocery.NewRepository(db.SQL), logger)
	suggestService := suggest.NewService(invoker, guard, creditStore, usageStore, logger)
	recipeClipper := clipper.NewClipper(invoker, recipeRepo, usageStore, logger)
	paymentService := payments.NewService(
		payments.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey),
		creditStore,
		logger,
	)

	bot, err := telegram.NewBot(
		cfg,
		planService,
		recipeService,
		altService,
		groceryService,
		suggestService,
		recipeClipper,
		paymentService,
		creditStore,
		usageStore,
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		logger.Info("bot server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exited")
}
