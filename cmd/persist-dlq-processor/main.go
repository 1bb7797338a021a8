package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/vatgate/vatgate-api/internal/auth"
	awsclient "github.com/vatgate/vatgate-api/internal/client/aws"
	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/logger"
	"github.com/vatgate/vatgate-api/internal/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Application holds the application dependencies
type Application struct {
	admin          shopadmin.AdminClientInterface
	logger         *zap.Logger
	maxRetries     int
	retryBackoffMs int
}

// ProcessingResult represents the result of processing one dead-lettered task
type ProcessingResult struct {
	MessageID             string `json:"message_id"`
	TaskID                string `json:"task_id"`
	CustomerID            string `json:"customer_id"`
	ProcessedSuccessfully bool   `json:"processed_successfully"`
	RetryAttempt          int    `json:"retry_attempt"`
	Error                 string `json:"error,omitempty"`
	ShouldRetry           bool   `json:"should_retry"`
}

func main() {
	// Initialize logger
	logger.InitLogger()
	zapLogger := logger.Log
	defer zapLogger.Sync()

	// Create application
	app, err := createApplication(zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create application", zap.Error(err))
	}

	// Start Lambda handler
	lambda.Start(app.handleDLQEvent)
}

func createApplication(zapLogger *zap.Logger) (*Application, error) {
	secrets, err := awsclient.NewSecretsManagerClient(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Secrets Manager client")
	}

	// Retries are enabled here: the processor runs off the request path, so
	// transient admin API failures are worth waiting out.
	adminClient := shopadmin.NewAdminClient(auth.NewSecretsTokenProvider(secrets), shopadmin.WithRetries())

	// Parse max retries (default: 3)
	maxRetries := 3
	if maxRetriesStr := os.Getenv("DLQ_MAX_RETRIES"); maxRetriesStr != "" {
		if parsed, err := strconv.Atoi(maxRetriesStr); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	// Parse retry backoff (default: 5000ms)
	retryBackoffMs := 5000
	if backoffStr := os.Getenv("DLQ_RETRY_BACKOFF_MS"); backoffStr != "" {
		if parsed, err := strconv.Atoi(backoffStr); err == nil && parsed > 0 {
			retryBackoffMs = parsed
		}
	}

	return &Application{
		admin:          adminClient,
		logger:         zapLogger,
		maxRetries:     maxRetries,
		retryBackoffMs: retryBackoffMs,
	}, nil
}

// handleDLQEvent processes SQS events from the dead letter queue
func (app *Application) handleDLQEvent(ctx context.Context, event events.SQSEvent) error {
	app.logger.Info("Processing DLQ event", zap.Int("message_count", len(event.Records)))

	var results []ProcessingResult

	for _, record := range event.Records {
		result := app.processDLQMessage(ctx, record)
		results = append(results, result)

		if result.ProcessedSuccessfully {
			app.logger.Info("DLQ message processed successfully",
				zap.String("message_id", result.MessageID),
				zap.String("task_id", result.TaskID),
				zap.String("customer_id", result.CustomerID),
				zap.Int("retry_attempt", result.RetryAttempt))
		} else {
			app.logger.Error("DLQ message processing failed",
				zap.String("message_id", result.MessageID),
				zap.String("task_id", result.TaskID),
				zap.String("customer_id", result.CustomerID),
				zap.Int("retry_attempt", result.RetryAttempt),
				zap.String("error", result.Error),
				zap.Bool("should_retry", result.ShouldRetry))
		}
	}

	// Log summary
	successful := 0
	failed := 0
	for _, result := range results {
		if result.ProcessedSuccessfully {
			successful++
		} else {
			failed++
		}
	}

	app.logger.Info("DLQ processing complete",
		zap.Int("total_messages", len(results)),
		zap.Int("successful", successful),
		zap.Int("failed", failed))

	return nil
}

// processDLQMessage processes a single dead-lettered persistence task
func (app *Application) processDLQMessage(ctx context.Context, record events.SQSMessage) ProcessingResult {
	result := ProcessingResult{
		MessageID: record.MessageId,
	}

	var task services.PersistTask
	if err := json.Unmarshal([]byte(record.Body), &task); err != nil {
		result.Error = errors.Wrap(err, "failed to parse persistence task").Error()
		return result
	}

	result.TaskID = task.ID.String()
	result.CustomerID = task.CustomerID
	result.RetryAttempt = task.Attempt + 1

	app.logger.Info("Processing dead-lettered persistence task",
		zap.String("message_id", record.MessageId),
		zap.String("task_id", result.TaskID),
		zap.String("customer_id", task.CustomerID),
		zap.Int("retry_attempt", result.RetryAttempt))

	// Check if we should retry
	if result.RetryAttempt > app.maxRetries {
		result.Error = "maximum retries exceeded"
		result.ShouldRetry = false

		app.logger.Error("Dropping persistence task after maximum retries",
			zap.String("task_id", result.TaskID),
			zap.String("customer_id", task.CustomerID),
			zap.Int("max_retries", app.maxRetries))
		return result
	}

	// Implement linear backoff per attempt
	backoffDelay := time.Duration(app.retryBackoffMs*result.RetryAttempt) * time.Millisecond
	if backoffDelay > 0 {
		app.logger.Info("Applying backoff delay",
			zap.Duration("delay", backoffDelay),
			zap.Int("retry_attempt", result.RetryAttempt))

		select {
		case <-ctx.Done():
			result.Error = ctx.Err().Error()
			result.ShouldRetry = true
			return result
		case <-time.After(backoffDelay):
		}
	}

	err := app.admin.UpdateCustomerTaxProfile(ctx, task.StorefrontDomain, task.CustomerID, task.TaxExempt, task.Options())
	if err != nil {
		result.Error = err.Error()
		result.ShouldRetry = true
		return result
	}

	result.ProcessedSuccessfully = true
	return result
}
