package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fleet-oracle/config"
	"fleet-oracle/logs"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the config.yaml file")
	flag.Parse()

	// Load .env file (submission service endpoint and token).
	if err := godotenv.Load(); err != nil {
		fmt.Println("Note: .env file not found, will continue using system environment variables.")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Fatal error: Unable to load config file '%s': %v\n", *configPath, err)
		os.Exit(1)
	}

	envCfg := config.LoadEnvConfig()

	logFilename := fmt.Sprintf("%s/oracle.log", cfg.Normal.LogDirectory)
	if err := logs.Init(cfg.Logs, logFilename); err != nil {
		fmt.Printf("Fatal error: Failed to initialize logging system: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()

	logs.Infof("Configuration loaded successfully, logs will be written to: %s", logFilename)

	orchestrator, err := NewOrchestrator(cfg, envCfg)
	if err != nil {
		logs.Fatalf("Failed to initialize Orchestrator: %v", err)
	}
	if err := orchestrator.Start(); err != nil {
		logs.Fatalf("Failed to start Orchestrator: %v", err)
	}

	// Exit on a termination signal or when the loop halts itself after a
	// committed failover.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-orchestrator.Done():
		logs.Info("Monitoring loop finished, shutting down.")
	}

	orchestrator.Stop()
}
