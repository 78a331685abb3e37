package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/ai"
	"github.com/Vovarama1992/paper2deck/internal/artifacts"
	"github.com/Vovarama1992/paper2deck/internal/config"
	"github.com/Vovarama1992/paper2deck/internal/deck"
	"github.com/Vovarama1992/paper2deck/internal/delivery"
	"github.com/Vovarama1992/paper2deck/internal/generation"
	"github.com/Vovarama1992/paper2deck/internal/notificator"
	"github.com/Vovarama1992/paper2deck/internal/pdf"
	"github.com/Vovarama1992/paper2deck/internal/prompts"
	"github.com/Vovarama1992/paper2deck/internal/slides"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var (
		store   artifacts.Store
		s3Store *artifacts.S3Store
	)
	switch cfg.ArtifactBackend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s3Store, err = artifacts.NewS3Store(ctx, artifacts.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Secure:    cfg.S3Secure,
			Prefix:    cfg.S3Prefix,
			MaxAge:    cfg.ArtifactTTL,
		})
		if err != nil {
			cancel()
			log.Fatalf("failed to init s3: %v", err)
		}
		if err := s3Store.EnsureLifecycle(ctx); err != nil {
			log.Printf("[s3] lifecycle rule not installed, relying on sweeps: %v", err)
		}
		cancel()
		store = s3Store
	default:
		store = artifacts.NewMemoryStore(cfg.ArtifactCapacity, cfg.ArtifactTTL)
	}

	provider, err := ai.NewProvider(cfg.AIProvider, cfg.GeminiBaseURL, cfg.OpenAIBaseURL, cfg.AITimeout)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var notifyInfra notificator.Notificator = notificator.NopInfra{}
	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[notificator] telegram disabled: %v", err)
		} else {
			notifyInfra = notificator.NewTelegramInfra(bot, cfg.TelegramAdminChatIDs)
		}
	}
	notifyService := notificator.NewService(notifyInfra)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	promptBuilder := prompts.NewBuilder(cfg.PromptMaxChars)

	pdfService := pdf.NewPDFService(pdf.NewLedongthucExtractor(), sugar)
	planner := slides.NewPlanner(provider, promptBuilder, sugar)
	translator := slides.NewTranslator(provider, promptBuilder, sugar)
	renderer := deck.NewRenderer(sugar)
	artifactService := artifacts.NewService(store, cfg.ArtifactTTL, sugar)
	catalog := ai.NewCatalog(provider, sugar)

	generationService := generation.NewService(
		pdfService,
		planner,
		translator,
		renderer,
		artifactService,
		notifyService,
		cfg.GenerationTimeout,
		sugar,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	handler := delivery.NewHandler(generationService, artifactService, catalog, cfg.MaxPDFBytes, zl)
	delivery.RegisterRoutes(r, handler, cfg.GenerateRateLimit)

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	if s3Store != nil {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()

			for {
				select {
				case <-jobsCtx.Done():
					return
				case <-ticker.C:
				}
				n, err := s3Store.Sweep(jobsCtx)
				if err != nil {
					log.Printf("[artifact-sweep] error: %v", err)
				} else if n > 0 {
					log.Printf("[artifact-sweep] removed %d expired artifacts", n)
				}
			}
		}()
	}

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + addr + " (ai=" + provider.Name() + ", artifacts=" + cfg.ArtifactBackend + ")",
			Service: "paper2deck",
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// let in-flight generations finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[shutdown] %v", err)
	}
}
