package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/dealdesk/backend/src/config"
	"github.com/username/dealdesk/backend/src/database"
	"github.com/username/dealdesk/backend/src/handlers"
	"github.com/username/dealdesk/backend/src/ledger"
	"github.com/username/dealdesk/backend/src/llm"
	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/negotiation"
	"github.com/username/dealdesk/backend/src/services"
	"github.com/username/dealdesk/backend/src/voice"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
			"http://localhost:8501": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Dealdesk backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing analysis cache...")
	analysisCache := cache.New(config.Cfg.CacheExpiry, config.Cfg.CacheCleanup)
	logger.L.Info("Analysis cache initialized.")

	logger.L.Info("Initializing offer ledger...", "backend", config.Cfg.OfferStoreBackend)
	var offerStore ledger.OfferStore
	if config.Cfg.OfferStoreBackend == "sqlite" {
		offerStore = ledger.NewSQLiteOfferStore(database.DB)
	} else {
		offerStore = ledger.NewCSVOfferStore(config.Cfg.OffersCSVPath)
	}
	offerLedger, err := ledger.New(offerStore)
	if err != nil {
		logger.L.Error("Failed to initialize offer ledger", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing services and handlers...")
	emailService := services.NewEmailService()
	analysisService := services.NewAnalysisService(offerLedger, analysisCache)
	threadStore := services.NewThreadStore(database.DB)
	strategyStore := services.NewStrategyStore(config.Cfg.StrategyOutputPath)
	session := negotiation.NewSession(config.Cfg.Customer, config.Cfg.Component)
	llmClient := llm.NewClient(config.Cfg.MistralBaseURL, config.Cfg.MistralAPIKey)
	voiceClient := voice.NewClient(config.Cfg.ElevenLabsBaseURL, config.Cfg.ElevenLabsAPIKey, config.Cfg.VoiceAgentID)

	negotiationService := services.NewNegotiationService(
		analysisService, offerLedger, session, emailService,
		threadStore, strategyStore, llmClient, voiceClient,
	)

	marketHandler := handlers.NewMarketHandler(analysisService)
	supplierHandler := handlers.NewSupplierHandler(analysisService, negotiationService)
	negotiationHandler := handlers.NewNegotiationHandler(analysisService, negotiationService, offerLedger)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/market/briefing", marketHandler.HandleGetBriefing)

	apiRouter.HandleFunc("GET /api/suppliers", supplierHandler.HandleGetSuppliers)
	apiRouter.HandleFunc("POST /api/orders", supplierHandler.HandleSetOrder)
	apiRouter.HandleFunc("POST /api/suppliers/{supplier}/request-offer", supplierHandler.HandleRequestOffer)

	apiRouter.HandleFunc("GET /api/negotiation/overview", negotiationHandler.HandleGetOverview)
	apiRouter.HandleFunc("POST /api/negotiation/offers", negotiationHandler.HandleRecordOffer)
	apiRouter.HandleFunc("POST /api/negotiation/{supplier}/accept", negotiationHandler.HandleAccept)
	apiRouter.HandleFunc("POST /api/negotiation/{supplier}/negotiate", negotiationHandler.HandleNegotiate)
	apiRouter.HandleFunc("GET /api/negotiation/{supplier}/thread", negotiationHandler.HandleGetThread)
	apiRouter.HandleFunc("POST /api/negotiation/leverage/analyze", negotiationHandler.HandleAnalyzeLeverage)
	apiRouter.HandleFunc("GET /api/negotiation/strategy", negotiationHandler.HandleGetStrategy)
	apiRouter.HandleFunc("PUT /api/negotiation/strategy", negotiationHandler.HandlePutStrategy)
	apiRouter.HandleFunc("POST /api/negotiation/call", negotiationHandler.HandleCall)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "DEALDESK Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
