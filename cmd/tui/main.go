package main

import (
	"flag"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/loader"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dataDir := flag.String("data", "", "OpenFlights data directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	// The alt screen owns stdout, so the dashboard runs without log output.
	logger := logging.NewLogger(io.Discard, logging.InfoLevel, logging.FormatText)

	g, _, err := loader.LoadDir(cfg.Data.Dir, cfg.Data.AirportsFile, cfg.Data.RoutesFile, logger)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}

	svc := analysis.NewService(
		analysis.WithLogger(logger),
		analysis.WithMetrics(metrics.NewRegistry()),
		analysis.WithWorkers(cfg.Attack.Workers),
	)

	p := tea.NewProgram(initialModel(svc, g, cfg.Attack), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
