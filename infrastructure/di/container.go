package di

import (
	"todo-backend/application/ports"
	"todo-backend/application/services"
	"todo-backend/infrastructure/config"
	"todo-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	AWSConfig aws.Config
	DynamoDB  *awsdynamodb.Client
	S3        *awss3.Client
	Tasks     ports.TaskRepository
	Signer    ports.AttachmentSigner
	Service   *services.TaskService
	Metrics   *observability.Metrics
	Tracer    *observability.Tracer
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
