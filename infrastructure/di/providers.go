package di

import (
	"context"

	"todo-backend/application/ports"
	"todo-backend/application/services"
	"todo-backend/infrastructure/config"
	"todo-backend/infrastructure/persistence/dynamodb"
	"todo-backend/infrastructure/storage/s3"
	"todo-backend/pkg/observability"
	"todo-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "todo-backend"

// Credentials accepted by DynamoDB Local
const (
	offlineAccessKey = "DEFAULT_ACCESS_KEY"
	offlineSecretKey = "DEFAULT_SECRET"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", serviceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideAWSConfig creates AWS configuration.
// Offline runs use static credentials so no real account is needed.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.IsOffline {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(offlineAccessKey, offlineSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	tracer.InstrumentAWS(&awsCfg)
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at the local endpoint when offline
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.IsOffline {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates metrics instance; publishing is off unless enabled
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics(cfg.MetricsNamespace, nil, logger)
	}
	return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
}

// ProvideClock supplies wall-clock time to the service and signer
func ProvideClock() utils.Clock {
	return utils.SystemClock
}

// ProvideTaskRepository creates the todo repository
func ProvideTaskRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TaskRepository {
	return dynamodb.NewTaskRepository(client, cfg.TodosTable, logger)
}

// ProvideAttachmentSigner creates the attachment URL signer
func ProvideAttachmentSigner(client *awss3.Client, cfg *config.Config, clock utils.Clock, logger *zap.Logger) (ports.AttachmentSigner, error) {
	signer, err := s3.NewAttachmentSigner(client, cfg.AttachmentBucket, cfg.URLExpiration(), clock, logger)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// ProvideTaskService creates the todo service
func ProvideTaskService(
	repo ports.TaskRepository,
	signer ports.AttachmentSigner,
	cfg *config.Config,
	clock utils.Clock,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.TaskService {
	return services.NewTaskService(repo, signer, cfg.AttachmentBucket, clock, tracer, logger)
}
