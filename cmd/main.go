package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/handler"
	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/logger"
	"github.com/webshopd/nexipay/infra/middle"
	"github.com/webshopd/nexipay/infra/opensearch"
	"github.com/webshopd/nexipay/infra/response"
	"github.com/webshopd/nexipay/infra/store"
	"github.com/webshopd/nexipay/router"
)

var (
	PORT             string
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Load Env: %v", err)
	}
	// init conf
	_ = config.App()

	PORT = config.GetEnv("APP_PORT", "9999")

	// Initialize OpenSearch client and logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}
	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	cfg := config.GetAppConfig()
	settings := config.LoadSettings()

	sqliteStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to open order store: %v", err)
	}
	defer sqliteStore.Close()

	client, err := checkout.NewClient(checkout.ClientConfig{
		SecretKey: settings.SecretKey,
		Live:      settings.Live,
		Timeout:   settings.ProviderTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create provider client: %v", err)
	}
	service := checkout.NewService(client, sqliteStore, sqliteStore, settings)

	// Build the registered gateway variants
	gateways := make(map[string]checkout.Gateway)
	for _, name := range checkout.DefaultRegistry.GetGatewayNames() {
		gateway, err := checkout.CreateGateway(name)
		if err != nil {
			log.Printf("Failed to create gateway %s: %v", name, err)
			continue
		}
		if err := gateway.Initialize(service); err != nil {
			log.Printf("Failed to initialize gateway %s: %v", name, err)
			continue
		}
		gateways[name] = gateway
		log.Printf("Registered checkout gateway: %s", name)
	}
	if len(gateways) == 0 {
		log.Println("No checkout gateways configured!")
	}

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	rateLimiter := middle.NewRateLimiter()
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RateLimitMiddleware(rateLimiter))
	r.Use(middle.RequestValidationMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())

	// OpenSearch Logging Middleware
	if openSearchLogger != nil {
		r.Use(middle.PaymentLoggingMiddleware(openSearchLogger))
		log.Println("Payment logging middleware enabled")
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint (no auth required)
	gatewayNames := checkout.DefaultRegistry.GetGatewayNames()
	healthHandler := handler.NewHealthHandler(gatewayNames)
	r.Get("/health", healthHandler.Health)

	// API routes
	router.Routes(r, service, gateways, sqliteStore)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Success: false, Message: "Not Found"})
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run your HTTP server in a goroutine
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", PORT),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", PORT)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
