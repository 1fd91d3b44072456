package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"healthscreen/internal/agent"
	"healthscreen/internal/capture"
	"healthscreen/internal/chat"
	"healthscreen/internal/config"
	"healthscreen/internal/email"
	"healthscreen/internal/platform/smtp"
	"healthscreen/internal/report"
	"healthscreen/internal/symptom"
	"healthscreen/pkg/logger"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	// Clients and capabilities
	assessor := agent.NewCannedClient(cfg.GoogleAPIKey)
	mic := capture.NewMicrophone()

	var mailer email.Service
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPService(smtp.NewClient(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From,
		))
		log.Info("using SMTP mailer", "host", cfg.SMTP.Host)
	} else {
		mailer = email.NewDryRunService(log)
	}

	// Services
	sched := chat.NewScheduler(cfg.LegacyTimers)
	if cfg.LegacyTimers {
		log.Warn("legacy timers enabled: scheduled effects will not be cancelled on session teardown")
	}
	registry := chat.NewRegistry(cfg.SessionTTL, sched, log)
	chatSvc := chat.NewService(registry, sched, assessor, mic, mailer, cfg.ResponseDelay, log)
	letterSvc := report.NewService()

	chatHandler := chat.NewHandler(chatSvc, letterSvc, log)
	symptomHandler := symptom.NewHandler()
	reportHandler := report.NewHandler()

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for the frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		chat.RegisterRoutes(r, chatHandler)
		symptom.RegisterRoutes(r, symptomHandler)
		report.RegisterRoutes(r, reportHandler)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err, "server stopped")
	}
}
