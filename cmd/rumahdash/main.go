package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rumahdash/internal/config"
	"rumahdash/internal/dataset"
	"rumahdash/internal/filter"
	"rumahdash/internal/server"
	"rumahdash/pkg/constants"
	"rumahdash/pkg/output"
	"rumahdash/pkg/validation"
)

var Version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	dataLocation := flag.String("data", "", "path to the listings CSV (overrides config)")
	serve := flag.Bool("serve", false, "start the HTTP dashboard instead of printing a summary")
	serverConfigLocation := flag.String("server-config", "", "path to optional server configuration file")
	addr := flag.String("addr", "", "HTTP listen address override (e.g. :8080)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	dataPath := conf.Data.Path
	if *dataLocation != "" {
		dataPath = *dataLocation
	}

	store := dataset.NewStore(logger)

	// Fail fast on a missing dataset; the file is required in both modes.
	ds, err := store.GetOrLoad(dataPath)
	if err != nil {
		logger.Fatal("failed to load listings data",
			zap.String("op", "main"),
			zap.String("path", dataPath),
			zap.Error(err),
		)
	}

	if *serve {
		runServer(logger, store, dataPath, *serverConfigLocation, *addr)
		return
	}

	// CLI mode: summarize the full dataset.
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	view := filter.Apply(ds, filter.DefaultCriteria(ds))
	aggregates, err := filter.Aggregate(view, constants.DefaultTopListings)
	if err != nil {
		logger.Fatal("failed to summarize listings",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(aggregates)
	case constants.OutputFormatCSV:
		output.CsvFormat(aggregates)
	}
}

func runServer(logger *zap.Logger, store *dataset.Store, dataPath, serverConfigLocation, addrOverride string) {
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if addrOverride != "" {
		serverConf.Address = addrOverride
	}

	if serverConf.GinMode != "" {
		gin.SetMode(serverConf.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(logger, store, dataPath, Version, serverConf.Origins())
	httpServer := &http.Server{
		Addr:    serverConf.Address,
		Handler: router,
	}

	go func() {
		logger.Info("dashboard listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down", zap.String("op", "main"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
