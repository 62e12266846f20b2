package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joshdias/zaprouter/internal/config"
	"github.com/joshdias/zaprouter/internal/logger"
	"github.com/joshdias/zaprouter/internal/metrics"
	"github.com/joshdias/zaprouter/internal/tracing"
	"github.com/joshdias/zaprouter/pkg/ai"
	"github.com/joshdias/zaprouter/pkg/csvproc"
	"github.com/joshdias/zaprouter/pkg/forwarding"
	"github.com/joshdias/zaprouter/pkg/routing"
	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/joshdias/zaprouter/pkg/transcription"
	"github.com/joshdias/zaprouter/pkg/webhook"
	"github.com/joshdias/zaprouter/pkg/workerpool"
	"github.com/joshdias/zaprouter/pkg/zapi"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long: `Run the webhook server in the foreground.
The server receives Z-API message callbacks and routes them to the
registered tools until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	validator := config.NewValidator()
	if problems := validator.ValidateConfig(cfg); len(problems) > 0 {
		messages := make([]string, 0, len(problems))
		for _, p := range problems {
			messages = append(messages, p.Error())
		}
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(messages, "\n  "))
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	zlog := appLogger.Zerolog()

	if err := tracing.Init(tracing.Config{SampleRatio: cfg.Tracing.SampleRatio}); err != nil {
		zlog.Warn().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			zlog.Warn().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	pidFile := getPIDFilePath()
	if isRunning(pidFile) {
		return fmt.Errorf("server is already running (PID file: %s)", pidFile)
	}
	if err := writePIDFile(pidFile); err != nil {
		zlog.Warn().Err(err).Str("file", pidFile).Msg("Failed to write PID file")
	} else {
		defer os.Remove(pidFile)
	}

	// Metrics sinks; nil sinks mean the consumers fall back to no-ops.
	m := metrics.NewMetrics()
	var (
		metricsSink    webhook.Metrics
		metricsHandler = m.Handler()
		gatewayMetrics zapi.Metrics
		poolMetrics    workerpool.Metrics
		notifyMetrics  transcription.Metrics
	)
	if cfg.Server.MetricsEnabled {
		metricsSink = m
		gatewayMetrics = m
		poolMetrics = m
		notifyMetrics = m
	} else {
		metricsHandler = nil
	}

	// Outbound gateway client
	gateway := zapi.NewClient(zapi.Options{
		BaseURL:     cfg.ZAPI.BaseURL,
		ClientToken: cfg.ZAPI.ClientToken,
		Timeout:     time.Duration(cfg.ZAPI.TimeoutSeconds) * time.Second,
		LogRequests: cfg.ZAPI.LogRequests,
		Metrics:     gatewayMetrics,
	})

	// Completion provider for transcript processing
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}

	// Transcription pipeline
	compressor := transcription.NewFFmpegCompressor()
	if cfg.Transcription.FFmpegBinary != "" {
		compressor.Binary = cfg.Transcription.FFmpegBinary
	}
	transcriber := transcription.NewWhisperTranscriber(cfg.Transcription.OpenAIAPIKey, cfg.Transcription.Model, compressor)
	workflow := transcription.NewWorkflow(transcriber, provider)
	transcriptionSvc := transcription.NewService(workflow, gateway, transcription.ServiceOptions{
		Workers:       cfg.Transcription.Workers,
		QueueSize:     cfg.Transcription.QueueSize,
		RetryAttempts: cfg.Notification.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Notification.RetryDelaySeconds) * time.Second,
		Metrics:       notifyMetrics,
		PoolMetrics:   poolMetrics,
	})

	// Property listing processor
	csvSvc := csvproc.NewService(gateway, csvproc.ServiceOptions{
		Workers:   cfg.CSV.Workers,
		QueueSize: cfg.CSV.QueueSize,
		Filter: csvproc.Filter{
			City:                cfg.CSV.FilterCity,
			DescriptionContains: cfg.CSV.FilterDescription,
			SaleModes:           cfg.CSV.FilterSaleModes,
		},
		PoolMetrics: poolMetrics,
	})

	// Tool registry
	registry := tool.NewRegistry()
	registry.Register(transcription.NewTool(transcriptionSvc))
	registry.Register(csvproc.NewTool(csvSvc))
	registry.Register(forwarding.NewTool(gateway, cfg.Forwarding.DestinationPhone))

	service := tool.NewService(registry)
	phones := routing.NewPhoneToolMap(cfg.Routing.Mappings)

	server, err := webhook.NewServer(webhook.ServerOptions{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		SyncWait:           time.Duration(cfg.Server.SyncWaitSeconds) * time.Second,
		AuthToken:          cfg.Server.AuthToken,
	}, service, registry, phones, metricsSink, metricsHandler, zlog)
	if err != nil {
		return fmt.Errorf("failed to create webhook server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	zlog.Info().
		Str("version", version).
		Strs("tools", registry.Names()).
		Msg("zaprouter started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zlog.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	if err := server.Stop(); err != nil {
		zlog.Error().Err(err).Msg("Error stopping webhook server")
	}
	if !transcriptionSvc.Close(30 * time.Second) {
		zlog.Warn().Msg("Transcription pool did not drain in time")
	}
	if !csvSvc.Close(30 * time.Second) {
		zlog.Warn().Msg("CSV pool did not drain in time")
	}

	zlog.Info().Msg("zaprouter stopped")
	return nil
}

func writePIDFile(pidFile string) error {
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
