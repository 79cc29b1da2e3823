package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	accountapp "waterworks-portal/internal/accounts/application"
	accountrepo "waterworks-portal/internal/accounts/infrastructure/postgres"
	accounthttp "waterworks-portal/internal/accounts/interfaces/http"
	apihttp "waterworks-portal/internal/api/http"
	"waterworks-portal/internal/audit"
	"waterworks-portal/internal/auth"
	billingadapters "waterworks-portal/internal/billing/adapters/accounts"
	billingapp "waterworks-portal/internal/billing/application"
	billingrepo "waterworks-portal/internal/billing/infrastructure/postgres"
	billinghttp "waterworks-portal/internal/billing/interfaces/http"
	"waterworks-portal/internal/ledger"
	"waterworks-portal/internal/observability/metrics"
	readingapp "waterworks-portal/internal/readings/application"
	readingrepo "waterworks-portal/internal/readings/infrastructure/postgres"
	readinghttp "waterworks-portal/internal/readings/interfaces/http"
	requestapp "waterworks-portal/internal/servicerequests/application"
	requestrepo "waterworks-portal/internal/servicerequests/infrastructure/postgres"
	requesthttp "waterworks-portal/internal/servicerequests/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	accountChecker := auth.NewAccountChecker(db)
	auditRepo := audit.NewRepository(db)

	ledgerCfg, err := ledger.LoadConfig()
	if err != nil {
		logger.Fatalf("ledger config error: %v", err)
	}
	ledgerClient, err := ledger.NewClient(ledgerCfg)
	if err != nil {
		logger.Fatalf("ledger client error: %v", err)
	}

	accountService, err := accountapp.NewService(accountrepo.NewAccountRepository(db), systemClock{})
	if err != nil {
		logger.Fatalf("account service error: %v", err)
	}
	accountHandler, err := accounthttp.NewHandler(accountService)
	if err != nil {
		logger.Fatalf("account handler error: %v", err)
	}

	directory, err := billingadapters.NewDirectory(accountService)
	if err != nil {
		logger.Fatalf("account directory error: %v", err)
	}
	billingService, err := billingapp.NewBillingService(
		directory,
		ledgerClient,
		billingrepo.NewPaymentRepository(db),
		systemClock{},
		logger,
	)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	billingHandler, err := billinghttp.NewHandler(billingService, accountChecker, auditRepo)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}

	readingService, err := readingapp.NewService(readingrepo.NewReadingRepository(db), systemClock{})
	if err != nil {
		logger.Fatalf("readings service error: %v", err)
	}
	readingHandler, err := readinghttp.NewHandler(readingService, accountChecker)
	if err != nil {
		logger.Fatalf("readings handler error: %v", err)
	}

	accountsRouter, err := apihttp.NewAccountsRouter(accountHandler, billingHandler, readingHandler)
	if err != nil {
		logger.Fatalf("accounts router error: %v", err)
	}

	requestService, err := requestapp.NewService(requestrepo.NewRequestRepository(db), systemClock{})
	if err != nil {
		logger.Fatalf("service request service error: %v", err)
	}
	requestHandler, err := requesthttp.NewHandler(requestService)
	if err != nil {
		logger.Fatalf("service request handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/accounts", accountsRouter)
	mux.Handle("/api/v1/accounts/", accountsRouter)
	mux.Handle("/api/v1/service-requests", requestHandler)
	mux.Handle("/api/v1/service-requests/", requestHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
