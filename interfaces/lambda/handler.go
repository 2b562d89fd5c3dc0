package lambda

import (
	"context"
	"time"

	"todo-backend/application/commands"
	"todo-backend/domain/core/entities"
	apperrors "todo-backend/pkg/errors"
	"todo-backend/pkg/observability"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

// Supported operations
const (
	OperationList      = "list"
	OperationCreate    = "create"
	OperationUpdate    = "update"
	OperationDelete    = "delete"
	OperationUploadURL = "uploadUrl"

	// operationUnknown is the metrics dimension for any other operation name
	operationUnknown = "unknown"
)

// TaskService is the application surface the handler dispatches to
type TaskService interface {
	ListTasks(ctx context.Context, query commands.ListTasksQuery) ([]*entities.Task, error)
	CreateTask(ctx context.Context, cmd commands.CreateTaskCommand) (*entities.Task, error)
	UpdateTask(ctx context.Context, cmd commands.UpdateTaskCommand) error
	DeleteTask(ctx context.Context, cmd commands.DeleteTaskCommand) error
	IssueAttachmentURL(ctx context.Context, cmd commands.IssueAttachmentURLCommand) (string, error)
}

// Request is the payload of a direct invocation.
// UserID is supplied by the caller; it is trusted as-is.
type Request struct {
	Operation string  `json:"operation"`
	UserID    string  `json:"userId"`
	TodoID    string  `json:"todoId,omitempty"`
	Name      *string `json:"name,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Done      *bool   `json:"done,omitempty"`
}

// ErrorBody is the caller-facing description of a failure
type ErrorBody struct {
	Type    apperrors.ErrorType `json:"type"`
	Message string              `json:"message"`
}

// Response is the result of a direct invocation
type Response struct {
	Item      *entities.Task    `json:"item,omitempty"`
	Items     *[]*entities.Task `json:"items,omitempty"`
	UploadURL string            `json:"uploadUrl,omitempty"`
	Error     *ErrorBody        `json:"error,omitempty"`
}

// Handler dispatches invocations to the todo service
type Handler struct {
	service TaskService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(service TaskService, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle runs one operation. Application failures are reported in the
// response body; the returned error is reserved for invocation failures.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	logger := h.logger.With(
		zap.String("operation", req.Operation),
		zap.String("userId", req.UserID),
	)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("requestId", lc.AwsRequestID))
	}

	logger.Info("Processing event")

	resp, err := h.dispatch(ctx, req)
	h.metrics.RecordOperation(ctx, metricOperation(req.Operation), time.Since(start), err)

	if err != nil {
		resp = Response{Error: h.describe(logger, err)}
	}

	logger.Info("Event processed",
		zap.Duration("duration", time.Since(start)),
		zap.Bool("success", err == nil),
	)
	return resp, nil
}

func (h *Handler) dispatch(ctx context.Context, req Request) (Response, error) {
	switch req.Operation {
	case OperationList:
		tasks, err := h.service.ListTasks(ctx, commands.ListTasksQuery{OwnerID: req.UserID})
		if err != nil {
			return Response{}, err
		}
		return Response{Items: &tasks}, nil

	case OperationCreate:
		task, err := h.service.CreateTask(ctx, commands.CreateTaskCommand{
			OwnerID: req.UserID,
			Name:    deref(req.Name),
			DueDate: deref(req.DueDate),
		})
		if err != nil {
			return Response{}, err
		}
		return Response{Item: task}, nil

	case OperationUpdate:
		err := h.service.UpdateTask(ctx, commands.UpdateTaskCommand{
			OwnerID: req.UserID,
			ItemID:  req.TodoID,
			Name:    req.Name,
			DueDate: req.DueDate,
			Done:    req.Done,
		})
		return Response{}, err

	case OperationDelete:
		err := h.service.DeleteTask(ctx, commands.DeleteTaskCommand{
			OwnerID: req.UserID,
			ItemID:  req.TodoID,
		})
		return Response{}, err

	case OperationUploadURL:
		url, err := h.service.IssueAttachmentURL(ctx, commands.IssueAttachmentURLCommand{
			OwnerID: req.UserID,
			ItemID:  req.TodoID,
		})
		if err != nil {
			return Response{}, err
		}
		return Response{UploadURL: url}, nil

	default:
		return Response{}, apperrors.NewValidationError("unsupported operation: " + req.Operation)
	}
}

// describe logs the failure and reduces it to what the caller may see
func (h *Handler) describe(logger *zap.Logger, err error) *ErrorBody {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewInternalError("internal error").WithCause(err)
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeNotFound:
		logger.Warn("Request rejected", zap.String("errorType", string(appErr.Type)), zap.Error(err))
	default:
		logger.Error("Request failed", zap.String("errorType", string(appErr.Type)), zap.Error(err))
		logger.Debug("Error origin", zap.String("stackTrace", appErr.StackTrace))
	}

	return &ErrorBody{Type: appErr.Type, Message: appErr.Message}
}

// metricOperation bounds the Operation dimension to the supported names
func metricOperation(operation string) string {
	switch operation {
	case OperationList, OperationCreate, OperationUpdate, OperationDelete, OperationUploadURL:
		return operation
	default:
		return operationUnknown
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
