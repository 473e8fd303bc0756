package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string

	// LLM configuration
	LLMProvider  string
	GroqAPIKey   string
	GroqModel    string
	GroqBaseURL  string
	GeminiAPIKey string
	GeminiModel  string

	// Knowledge agent
	ProfilePath string

	// Google Calendar OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	CalendarTokenPath  string

	// Availability defaults
	AvailabilityDays    int
	SlotDurationMinutes int
	WorkingHourStart    int
	WorkingHourEnd      int

	// Email notification
	SendGridAPIKey         string
	SendGridFromEmail      string
	SendGridFromName       string
	SMTPServer             string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	FeedbackEmailRecipient string
	NotifyTimeout          time.Duration
}

// groqSecretPath is where Cloud Run mounts the API key when Secret Manager
// integration is enabled. The environment variable is the fallback.
const groqSecretPath = "/secrets/GROQ_API_KEY"

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		LLMProvider:  strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
		GroqAPIKey:   loadGroqAPIKey(),
		GroqModel:    getEnv("GROQ_MODEL", "llama3-8b-8192"),
		GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		ProfilePath: getEnv("PROFILE_PATH", "profile.json"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/calendar/oauth/callback"),
		CalendarTokenPath:  getEnv("CALENDAR_TOKEN_PATH", "data/calendar_token.json"),

		AvailabilityDays:    getEnvAsInt("AVAILABILITY_DAYS", 7),
		SlotDurationMinutes: getEnvAsInt("SLOT_DURATION_MINUTES", 60),
		WorkingHourStart:    getEnvAsInt("WORKING_HOUR_START", 9),
		WorkingHourEnd:      getEnvAsInt("WORKING_HOUR_END", 17),

		SendGridAPIKey:         getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:      getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:       getEnv("SENDGRID_FROM_NAME", "Portfolio Assistant"),
		SMTPServer:             getEnv("EMAIL_SMTP_SERVER", ""),
		SMTPPort:               getEnvAsInt("EMAIL_SMTP_PORT", 587),
		SMTPUsername:           getEnv("EMAIL_USERNAME", ""),
		SMTPPassword:           getEnv("EMAIL_PASSWORD", ""),
		FeedbackEmailRecipient: getEnv("FEEDBACK_EMAIL_RECIPIENT", ""),
		NotifyTimeout:          getEnvAsDuration("NOTIFY_TIMEOUT", 30*time.Second),
	}
}

// SMTPConfigured reports whether every SMTP setting required to send mail is present.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPServer != "" && c.SMTPUsername != "" && c.SMTPPassword != "" && c.FeedbackEmailRecipient != ""
}

// CalendarOAuthConfigured reports whether the Google OAuth client is usable.
func (c *Config) CalendarOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func loadGroqAPIKey() string {
	if data, err := os.ReadFile(groqSecretPath); err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key
		}
	}
	return getEnv("GROQ_API_KEY", "")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
