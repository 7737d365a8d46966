package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"keyterm-chat-client/api"
	"keyterm-chat-client/db"
	"keyterm-chat-client/ui"
	"keyterm-chat-client/utils"
)

var (
	version = "0.1.0"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Key-Term Chat Client v%s\n", version)
		os.Exit(0)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.GetLogPath())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting Key-Term Chat Client v%s", version)

	// A .env beside the binary can override the backend address
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	// Load or create default configuration
	var config *utils.Config
	var actualConfigPath string
	if *configPath != "" {
		actualConfigPath = *configPath
		config, err = utils.LoadConfig(actualConfigPath)
		if err != nil {
			logger.Error("Failed to load config: %v", err)
			os.Exit(1)
		}
	} else {
		actualConfigPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			logger.Error("Failed to create default config: %v", err)
			os.Exit(1)
		}
		logger.Info("Using config file: %s", actualConfigPath)

		config, err = utils.LoadConfig(actualConfigPath)
		if err != nil {
			logger.Error("Failed to load config: %v", err)
			os.Exit(1)
		}
	}

	utils.ApplyEnvOverrides(config)

	// Initialize local transcript database
	database, err := db.New(config.Data.DBPath)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("Database initialized: %s", config.Data.DBPath)

	if config.Data.MaxHistory > 0 {
		trimmed, err := database.TrimHistory(config.Data.MaxHistory)
		if err != nil {
			logger.Warn("Failed to trim history: %v", err)
		} else if trimmed > 0 {
			logger.Info("Trimmed %d old messages from history", trimmed)
		}
	}

	// Initialize backend client
	client, err := api.NewClient(api.Config{
		BaseURL: config.Backend.BaseURL,
		Timeout: config.Backend.TimeoutSeconds,
	})
	if err != nil {
		logger.Error("Failed to initialize backend client: %v", err)
		os.Exit(1)
	}

	logger.Info("Backend: %s", config.Backend.BaseURL)

	// Create and run application
	app := ui.NewApp(config, actualConfigPath, database, client, logger)
	defer app.Cleanup()

	logger.Info("Application started")
	app.Run()
	logger.Info("Application stopped")
}
