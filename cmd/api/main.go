package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pulse-finance/pulse/internal/config"
	"github.com/pulse-finance/pulse/internal/handler"
	"github.com/pulse-finance/pulse/internal/integrations/rates"
	"github.com/pulse-finance/pulse/internal/middleware"
	"github.com/pulse-finance/pulse/internal/notify"
	"github.com/pulse-finance/pulse/internal/repository"
	"github.com/pulse-finance/pulse/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	ratesClient := rates.NewClient(cfg, logger)
	sender := notify.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, ratesClient, sender)
	h := handler.NewHandler(svc, logger)

	// Daily bill reminders
	reminder := notify.NewReminder(repo, sender, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 8 * * *", reminder.Run); err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Key rate endpoint
	r.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := ratesClient.GetKeyRate()
		if err != nil {
			logger.Errorf("Failed to get key rate: %v", err)
			http.Error(w, "Key rate is currently unavailable", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/income", h.ListIncome).Methods("GET")
	authRouter.HandleFunc("/income", h.CreateIncome).Methods("POST")
	authRouter.HandleFunc("/income/{id}", h.UpdateIncome).Methods("PUT")
	authRouter.HandleFunc("/income/{id}", h.DeleteIncome).Methods("DELETE")
	authRouter.HandleFunc("/bills", h.ListBills).Methods("GET")
	authRouter.HandleFunc("/bills", h.CreateBill).Methods("POST")
	authRouter.HandleFunc("/bills/{id}", h.UpdateBill).Methods("PUT")
	authRouter.HandleFunc("/bills/{id}", h.DeleteBill).Methods("DELETE")
	authRouter.HandleFunc("/balance", h.GetBalance).Methods("GET")
	authRouter.HandleFunc("/balance", h.VerifyBalance).Methods("PUT")
	authRouter.HandleFunc("/summary", h.GetSummary).Methods("GET")
	authRouter.HandleFunc("/spending-advisor", h.SpendingAdvisor).Methods("POST")
	authRouter.HandleFunc("/financial-advisor", h.FinancialAdvisor).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
