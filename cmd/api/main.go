package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"

	"github.com/mnoushir/portfolio-assistant/internal/api/router"
	"github.com/mnoushir/portfolio-assistant/internal/calendar"
	appconfig "github.com/mnoushir/portfolio-assistant/internal/config"
	"github.com/mnoushir/portfolio-assistant/internal/feedback"
	"github.com/mnoushir/portfolio-assistant/internal/knowledge"
	"github.com/mnoushir/portfolio-assistant/internal/llm"
	"github.com/mnoushir/portfolio-assistant/internal/notify"
	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

func main() {
	// Load .env if present; environment variables win.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting portfolio-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	agentMetrics := metrics.NewAgentMetrics(registry)

	llmClient, provider := buildLLMClient(cfg, logger)
	llmClient = llm.WithMetrics(llmClient, provider, agentMetrics)
	defer func() {
		if err := llmClient.Close(); err != nil {
			logger.Warn("closing LLM client", "error", err)
		}
	}()

	emailSender := buildEmailSender(cfg, logger)

	// Knowledge agent
	knowledgeAgent := knowledge.NewAgent(llmClient, cfg.ProfilePath, logger)
	chatHandler := knowledge.NewHandler(knowledgeAgent, logger, agentMetrics)

	// Feedback agent
	dispatcher := feedback.NewDispatcher(emailSender, cfg.NotifyTimeout, logger)
	feedbackAgent := feedback.NewAgent(
		feedback.NewClassifier(llmClient, logger),
		dispatcher,
		cfg.FeedbackEmailRecipient,
		logger,
		agentMetrics,
	)
	feedbackHandler := feedback.NewHandler(feedbackAgent, logger, agentMetrics)

	// Calendar agent
	slotOpts := calendar.SlotOptions{
		HorizonDays: cfg.AvailabilityDays,
		Duration:    time.Duration(cfg.SlotDurationMinutes) * time.Minute,
		StartHour:   cfg.WorkingHourStart,
		EndHour:     cfg.WorkingHourEnd,
	}
	tokens := calendar.NewTokenStore(cfg.CalendarTokenPath)

	var oauthCfg *oauth2.Config
	var backendFactory calendar.BackendFactory
	var backend calendar.Backend
	if cfg.CalendarOAuthConfigured() {
		oauthCfg = calendar.NewOAuthConfig(calendar.OAuthSettings{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
		})
		backendFactory = func(ctx context.Context, token *oauth2.Token) (calendar.Backend, error) {
			gc, err := calendar.NewGoogleClient(ctx, oauthCfg, token, logger)
			if err != nil {
				return nil, err
			}
			return gc, nil
		}
		if token, err := tokens.Load(); err != nil {
			logger.Info("no stored calendar token, starting in demo mode", "path", cfg.CalendarTokenPath)
		} else if gc, err := calendar.NewGoogleClient(context.Background(), oauthCfg, token, logger); err != nil {
			logger.Warn("calendar backend unavailable, starting in demo mode", "error", err)
		} else {
			backend = gc
		}
	} else {
		logger.Warn("Google OAuth not configured, calendar runs in demo mode")
	}

	scheduler := calendar.NewScheduler(backend, slotOpts, logger, time.Now)
	calendarHandler := calendar.NewHandler(scheduler, oauthCfg, tokens, backendFactory, logger, agentMetrics)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		FeedbackHandler:    feedbackHandler,
		CalendarHandler:    calendarHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight feedback notifications finish before exit.
	feedbackAgent.Wait()
	logger.Info("server stopped")
}

// buildLLMClient selects the chat completion provider. A misconfigured
// provider degrades to an unconfigured client so the server still
// starts and surfaces the configuration error per request.
func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) (llm.Client, string) {
	switch cfg.LLMProvider {
	case "gemini":
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini client unavailable", "error", err)
			return llm.NewGroqClient("", cfg.GroqModel, cfg.GroqBaseURL), "groq"
		}
		logger.Info("LLM provider selected", "provider", "gemini", "model", cfg.GeminiModel)
		return client, "gemini"
	default:
		if cfg.LLMProvider != "groq" {
			logger.Warn("unknown LLM provider, defaulting to groq", "provider", cfg.LLMProvider)
		}
		if cfg.GroqAPIKey == "" {
			logger.Warn("GROQ_API_KEY not set, chat will return configuration errors")
		}
		logger.Info("LLM provider selected", "provider", "groq", "model", cfg.GroqModel)
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL), "groq"
	}
}

// buildEmailSender prefers SendGrid, falls back to SMTP, and degrades
// to a logging stub so feedback intake never depends on email config.
func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		logger.Info("email notifications via SendGrid", "from", cfg.SendGridFromEmail)
		return sender
	}

	// SMTPConfigured also requires the feedback recipient, so an SMTP
	// relay with nowhere to deliver falls through to the stub.
	if cfg.SMTPConfigured() {
		logger.Info("email notifications via SMTP", "server", cfg.SMTPServer)
		return notify.NewSMTPSender(notify.SMTPConfig{
			Server:   cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, logger)
	}

	logger.Warn("no email provider configured, notifications will be logged only")
	return notify.NewStubEmailSender(logger)
}
