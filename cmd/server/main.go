package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/samit-dev/wisuda/internal/app"
	"github.com/samit-dev/wisuda/internal/handlers"
)

func main() {
	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	wisudaHandler := handlers.NewWisudaHandler(service)

	http.HandleFunc("POST /api/auth/login", wisudaHandler.HandleLogin)
	http.HandleFunc("GET /api/wisuda/status", wisudaHandler.HandleStatus)
	http.HandleFunc("POST /api/wisuda/nomination", wisudaHandler.HandleNomination)
	http.HandleFunc("POST /api/wisuda/dreams", wisudaHandler.HandleDreams)
	http.HandleFunc("GET /api/admin/nominations", wisudaHandler.HandleAdminNominations)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting wisuda server on %s", service.Config.Server.Port)
	for _, origin := range service.Config.Server.AllowedOrigins {
		logger.Debug.Printf("Allowing origin %s", origin)
	}

	handler := handlers.CORS(service.Config.Server.AllowedOrigins, http.DefaultServeMux)
	if err := http.ListenAndServe(service.Config.Server.Port, handler); err != nil {
		logger.Error.Fatalf("Wisuda server failed: %v", err)
	}
}
