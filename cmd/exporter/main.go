package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/samit-dev/wisuda/internal/app"
	"github.com/samit-dev/wisuda/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	exporter, err := export.NewCSVExporter(service.Config, service.Store)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize CSV exporter: %v", err)
	}
	defer exporter.Stop()

	logger.Info.Printf("Exporting on schedule %q to %s", service.Config.Export.Schedule, service.Config.Export.Dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Exporter stopped")
}
