package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/analysis"
	"speechwell-server/pkg/config"
	http_server "speechwell-server/pkg/http"
	"speechwell-server/pkg/messaging"
	"speechwell-server/pkg/metrics"
	"speechwell-server/pkg/store"
	"speechwell-server/pkg/webhook"
)

var (
	logger      = logrus.New()
	appConfig   *config.Config
	resultStore *store.ResultStore
	amqpClient  *messaging.AMQPClient
	processor   *webhook.Processor
	httpServer  *http_server.Server
	wsHub       *http_server.ResultHub

	// Context for graceful shutdown
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// reportListener prints a human-readable session report to stdout for
// every analyzed conversation.
type reportListener struct{}

func (l *reportListener) OnSessionResult(result webhook.SessionResult) {
	analysis.WriteReport(os.Stdout, analysis.CallInfo{
		ConversationID: result.ConversationID,
		AgentID:        result.AgentID,
		Status:         result.Status,
		TurnCount:      result.TurnCount,
	}, &result.Summary)
}

func main() {
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logger.SetOutput(os.Stdout)

	rootCtx, rootCancel = context.WithCancel(context.Background())
	defer rootCancel()

	if err := initialize(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	httpServer.Start()
	logger.WithField("port", appConfig.HTTPPort).Info("Webhook server started")

	// Graceful shutdown handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Received shutdown signal, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Cancel the root context to signal shutdown to all goroutines
	rootCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down HTTP server")
		} else {
			logger.Info("HTTP server shut down successfully")
		}
	}

	if amqpClient != nil {
		amqpClient.Disconnect()
	}

	logger.Info("Shutdown complete")
}

func initialize() error {
	var err error
	appConfig, err = config.Load(logger)
	if err != nil {
		return err
	}
	logger.SetLevel(appConfig.LogLevel)

	metrics.Init(logger)
	metrics.EnableMetrics(appConfig.HTTPEnableMetrics)

	resultStore = store.NewResultStore(logger, appConfig.ResultStoreCapacity)

	thresholds := analysis.ChallengeThresholds{
		WordFindingFillers:  appConfig.WordFindingFillerThreshold,
		FrequentCorrections: appConfig.FrequentCorrectionThreshold,
	}
	processor, err = webhook.NewProcessor(logger, thresholds, analysis.DefaultScoreWeights())
	if err != nil {
		return err
	}

	// Every analyzed session is stored, reported to the console and
	// streamed to WebSocket clients.
	processor.AddListener(store.NewResultListener(resultStore))
	processor.AddListener(&reportListener{})

	wsHub = http_server.NewResultHub(logger)
	go wsHub.Run(rootCtx)
	processor.AddListener(wsHub)

	if appConfig.AMQPUrl != "" {
		amqpClient = messaging.NewAMQPClient(logger, messaging.AMQPConfig{
			URL:       appConfig.AMQPUrl,
			QueueName: appConfig.AMQPQueueName,
		})
		if err := amqpClient.Connect(); err != nil {
			// The server still works without a broker; results just
			// stay local.
			logger.WithError(err).Warn("AMQP connection failed, continuing without publishing")
		}
		processor.AddListener(messaging.NewAMQPResultListener(logger, amqpClient))
	} else {
		logger.Info("AMQP_URL not set, result publishing disabled")
	}

	verifier := webhook.NewVerifier(appConfig.WebhookSecret, appConfig.WebhookMaxAge)
	webhookHandler := webhook.NewHandler(logger, verifier, processor)

	httpServer = http_server.NewServer(logger, &http_server.Config{
		Port:            appConfig.HTTPPort,
		EnableMetrics:   appConfig.HTTPEnableMetrics,
		ReadTimeout:     appConfig.HTTPReadTimeout,
		WriteTimeout:    appConfig.HTTPWriteTimeout,
		ShutdownTimeout: 5 * time.Second,
	}, resultStore)
	httpServer.SetResultHub(wsHub)
	if amqpClient != nil {
		httpServer.SetAMQPClient(amqpClient)
	}
	httpServer.RegisterHandler("/webhook/elevenlabs", webhookHandler.ServeHTTP)

	logger.WithFields(logrus.Fields{
		"port":           appConfig.HTTPPort,
		"store_capacity": appConfig.ResultStoreCapacity,
		"amqp_enabled":   appConfig.AMQPUrl != "",
	}).Info("Application initialized")

	return nil
}
