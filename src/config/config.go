package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Operator context for the single-session demo flow.
	Customer  string
	Component string

	// Dataset paths (read-only stores).
	LaborDevelopmentPath  string
	SteelDevelopmentPath  string
	EnergyDevelopmentPath string
	LaborRatesPath        string
	SteelRatesPath        string
	EnergyRatesPath       string
	TransactionsPath      string
	SupplierProfilesPath  string
	CostFactorWeightsPath string
	SupplierBasePricePath string

	// Offer/leverage table (read-write) and strategy artifact.
	OfferStoreBackend  string // "csv" or "sqlite"
	OffersCSVPath      string
	StrategyOutputPath string

	CacheExpiry  time.Duration
	CacheCleanup time.Duration

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail   string
	SenderName    string
	OperatorEmail string

	// Hosted collaborator credentials. Empty values disable the
	// corresponding collaborator (handlers fall back to local templates).
	MistralAPIKey            string
	MistralBaseURL           string
	LeverageAnalyzerAgentID  string
	StrategyFormalizerAgentID string
	CustomerEmailAgentID     string
	SupplierEmailAgentID     string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	VoiceAgentID      string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	cacheExpiryStr := getEnv("CACHE_EXPIRY", "15m")
	cacheExpiry, err := time.ParseDuration(cacheExpiryStr)
	if err != nil {
		log.Printf("WARNING: Invalid CACHE_EXPIRY format '%s'. Using default 15m. Error: %v", cacheExpiryStr, err)
		cacheExpiry = 15 * time.Minute
	}
	cacheCleanupStr := getEnv("CACHE_CLEANUP", "30m")
	cacheCleanup, err := time.ParseDuration(cacheCleanupStr)
	if err != nil {
		log.Printf("WARNING: Invalid CACHE_CLEANUP format '%s'. Using default 30m. Error: %v", cacheCleanupStr, err)
		cacheCleanup = 30 * time.Minute
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./dealdesk.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		Customer:  getEnv("CUSTOMER", "Acme Corp"),
		Component: getEnv("COMPONENT", "Drive Shaft"),

		LaborDevelopmentPath:  getEnv("LABOR_DEVELOPMENT_PATH", "dataset/labor_development.csv"),
		SteelDevelopmentPath:  getEnv("STEEL_DEVELOPMENT_PATH", "dataset/steel_development.csv"),
		EnergyDevelopmentPath: getEnv("ENERGY_DEVELOPMENT_PATH", "dataset/energy_development.csv"),
		LaborRatesPath:        getEnv("LABOR_RATES_PATH", "dataset/labor.csv"),
		SteelRatesPath:        getEnv("STEEL_RATES_PATH", "dataset/steel.csv"),
		EnergyRatesPath:       getEnv("ENERGY_RATES_PATH", "dataset/energy.csv"),
		TransactionsPath:      getEnv("TRANSACTIONS_PATH", "dataset/data.csv"),
		SupplierProfilesPath:  getEnv("SUPPLIER_PROFILES_PATH", "dataset/supplier.csv"),
		CostFactorWeightsPath: getEnv("COST_FACTOR_WEIGHTS_PATH", "dataset/cost_factors.csv"),
		SupplierBasePricePath: getEnv("SUPPLIER_BASE_PRICE_PATH", "dataset/supplier_base_price.csv"),

		OfferStoreBackend:  getEnv("OFFER_STORE", "csv"),
		OffersCSVPath:      getEnv("OFFERS_CSV_PATH", "runtimedata/offers_and_leverages.csv"),
		StrategyOutputPath: getEnv("STRATEGY_OUTPUT_PATH", "runtimedata/strategy_formalizer_output.json"),

		CacheExpiry:  cacheExpiry,
		CacheCleanup: cacheCleanup,

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail:   getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:    getEnv("SENDER_NAME", "Dealdesk Procurement"),
		OperatorEmail: getEnv("OPERATOR_EMAIL", ""),

		MistralAPIKey:             getEnv("MISTRAL_API_KEY", ""),
		MistralBaseURL:            getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		LeverageAnalyzerAgentID:   getEnv("LEVERAGE_ANALYZER_AGENT_ID", ""),
		StrategyFormalizerAgentID: getEnv("STRATEGY_FORMALIZER_AGENT_ID", ""),
		CustomerEmailAgentID:      getEnv("CUSTOMER_EMAIL_AGENT_ID", ""),
		SupplierEmailAgentID:      getEnv("SUPPLIER_EMAIL_AGENT_ID", ""),

		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		VoiceAgentID:      getEnv("VOICE_AGENT_ID", ""),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	if Cfg.OfferStoreBackend != "csv" && Cfg.OfferStoreBackend != "sqlite" {
		log.Printf("WARNING: Invalid OFFER_STORE '%s'. Using default 'csv'.", Cfg.OfferStoreBackend)
		Cfg.OfferStoreBackend = "csv"
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, OfferStore=%s, EmailProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.OfferStoreBackend, Cfg.EmailServiceProvider)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}
