package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"todo-backend/application/services"
	"todo-backend/infrastructure/persistence/dynamodb"
	apperrors "todo-backend/pkg/errors"
	"todo-backend/pkg/observability"
	"todo-backend/tests/mocks"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubSigner struct {
	url string
	err error
}

func (s *stubSigner) IssueUploadURL(ctx context.Context, itemID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url + itemID, nil
}

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

type fixture struct {
	handler *Handler
	table   *mocks.FakeDynamoDB
	signer  *stubSigner
}

func newFixture(t *testing.T, logger *zap.Logger, metrics *observability.Metrics) *fixture {
	t.Helper()
	table := mocks.NewFakeDynamoDB("userId", "todoId")
	signer := &stubSigner{url: "https://todo-attachments.s3.amazonaws.com/signed/"}
	repo := dynamodb.NewTaskRepository(table, "Todos-test", zap.NewNop())
	service := services.NewTaskService(repo, signer, "todo-attachments", nil, observability.NewTracer("test", false), zap.NewNop())
	return &fixture{
		handler: NewHandler(service, metrics, logger),
		table:   table,
		signer:  signer,
	}
}

func str(s string) *string { return &s }
func boolean(b bool) *bool { return &b }

func TestHandler_BuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, zap.NewNop(), nil)

	created, err := f.handler.Handle(ctx, Request{
		Operation: OperationCreate,
		UserID:    "u1",
		Name:      str("Buy milk"),
		DueDate:   str("2024-01-01"),
	})
	require.NoError(t, err)
	require.Nil(t, created.Error)
	require.NotNil(t, created.Item)
	assert.Equal(t, "Buy milk", created.Item.Name)
	assert.False(t, created.Item.Done)
	assert.Equal(t, "https://todo-attachments.s3.amazonaws.com/"+created.Item.ItemID, created.Item.AttachmentURL)
	todoID := created.Item.ItemID

	updated, err := f.handler.Handle(ctx, Request{
		Operation: OperationUpdate,
		UserID:    "u1",
		TodoID:    todoID,
		Name:      str("Buy oat milk"),
		DueDate:   str("2024-01-02"),
		Done:      boolean(true),
	})
	require.NoError(t, err)
	require.Nil(t, updated.Error)

	listed, err := f.handler.Handle(ctx, Request{Operation: OperationList, UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, listed.Items)
	require.Len(t, *listed.Items, 1)
	item := (*listed.Items)[0]
	assert.Equal(t, "Buy oat milk", item.Name)
	assert.Equal(t, "2024-01-02", item.DueDate)
	assert.True(t, item.Done)
	assert.Equal(t, created.Item.CreatedAt, item.CreatedAt)

	deleted, err := f.handler.Handle(ctx, Request{Operation: OperationDelete, UserID: "u1", TodoID: todoID})
	require.NoError(t, err)
	require.Nil(t, deleted.Error)

	listed, err = f.handler.Handle(ctx, Request{Operation: OperationList, UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, *listed.Items)
}

func TestHandler_EmptyListEncodesAsArray(t *testing.T) {
	f := newFixture(t, zap.NewNop(), nil)

	resp, err := f.handler.Handle(context.Background(), Request{Operation: OperationList, UserID: "nobody"})
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(body))
}

func TestHandler_UploadURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, zap.NewNop(), nil)

	created, err := f.handler.Handle(ctx, Request{Operation: OperationCreate, UserID: "u1", Name: str("Photo")})
	require.NoError(t, err)

	resp, err := f.handler.Handle(ctx, Request{Operation: OperationUploadURL, UserID: "u1", TodoID: created.Item.ItemID})
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	assert.Equal(t, "https://todo-attachments.s3.amazonaws.com/signed/"+created.Item.ItemID, resp.UploadURL)

	// another owner cannot obtain a URL for the same todo
	resp, err = f.handler.Handle(ctx, Request{Operation: OperationUploadURL, UserID: "u2", TodoID: created.Item.ItemID})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperrors.ErrorTypeNotFound, resp.Error.Type)
	assert.Empty(t, resp.UploadURL)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		setup       func(*fixture)
		wantType    apperrors.ErrorType
		wantMessage string
	}{
		{
			name:        "unsupported operation",
			req:         Request{Operation: "archive", UserID: "u1"},
			wantType:    apperrors.ErrorTypeValidation,
			wantMessage: "unsupported operation: archive",
		},
		{
			name:     "missing owner",
			req:      Request{Operation: OperationList},
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:        "update of a missing todo",
			req:         Request{Operation: OperationUpdate, UserID: "u1", TodoID: "missing", Name: str("x"), DueDate: str("y"), Done: boolean(false)},
			wantType:    apperrors.ErrorTypeNotFound,
			wantMessage: "todo not found",
		},
		{
			name: "store fault",
			req:  Request{Operation: OperationList, UserID: "u1"},
			setup: func(f *fixture) {
				f.table.Err = &smithy.GenericAPIError{Code: "InternalServerError", Message: "secret table detail"}
			},
			wantType:    apperrors.ErrorTypeDatabase,
			wantMessage: "error performing list on todos",
		},
		{
			name: "signing fault",
			req:  Request{Operation: OperationUploadURL, UserID: "u1", TodoID: "t1"},
			setup: func(f *fixture) {
				_, _ = f.table.PutItem(context.Background(), putTodo("u1", "t1"))
				f.signer.err = apperrors.NewSigningError(errors.New("secret key material"))
			},
			wantType:    apperrors.ErrorTypeSigning,
			wantMessage: "failed to sign attachment upload url",
		},
		{
			name: "unexpected error",
			req:  Request{Operation: OperationUploadURL, UserID: "u1", TodoID: "t1"},
			setup: func(f *fixture) {
				_, _ = f.table.PutItem(context.Background(), putTodo("u1", "t1"))
				f.signer.err = errors.New("boom")
			},
			wantType:    apperrors.ErrorTypeInternal,
			wantMessage: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, zap.NewNop(), nil)
			if tt.setup != nil {
				tt.setup(f)
			}

			resp, err := f.handler.Handle(context.Background(), tt.req)

			require.NoError(t, err)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			assert.NotContains(t, resp.Error.Message, "secret")
			assert.Nil(t, resp.Item)
			assert.Nil(t, resp.Items)
		})
	}
}

func TestHandler_LogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := newFixture(t, zap.New(core), nil)
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})

	_, err := f.handler.Handle(ctx, Request{Operation: OperationList, UserID: "u1"})
	require.NoError(t, err)

	entries := logs.FilterField(zap.String("requestId", "req-123")).All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Processing event", entries[0].Message)
	assert.Equal(t, "Event processed", entries[1].Message)
}

func TestHandler_RecordsMetrics(t *testing.T) {
	cw := new(mockCloudWatch)
	cw.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		dims := in.MetricData[0].Dimensions
		return aws.ToString(in.Namespace) == "TodoBackend" &&
			aws.ToString(dims[0].Value) == OperationUpdate &&
			aws.ToString(dims[1].Value) == "failure"
	})).Return(nil).Once()

	f := newFixture(t, zap.NewNop(), observability.NewMetrics("TodoBackend", cw, zap.NewNop()))

	resp, err := f.handler.Handle(context.Background(), Request{
		Operation: OperationUpdate,
		UserID:    "u1",
		TodoID:    "missing",
		Done:      boolean(true),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)

	cw.AssertExpectations(t)
}

func TestHandler_MetricsOperationDimensionIsBounded(t *testing.T) {
	for _, operation := range []string{"archive", ""} {
		t.Run("operation "+operation, func(t *testing.T) {
			cw := new(mockCloudWatch)
			cw.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
				for _, datum := range in.MetricData {
					if aws.ToString(datum.Dimensions[0].Value) != "unknown" {
						return false
					}
				}
				return true
			})).Return(nil).Once()

			f := newFixture(t, zap.NewNop(), observability.NewMetrics("TodoBackend", cw, zap.NewNop()))

			resp, err := f.handler.Handle(context.Background(), Request{Operation: operation, UserID: "u1"})
			require.NoError(t, err)
			require.NotNil(t, resp.Error)
			assert.Equal(t, apperrors.ErrorTypeValidation, resp.Error.Type)

			cw.AssertExpectations(t)
		})
	}
}

func TestHandler_LogsStackTraceForFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture(t, zap.New(core), nil)
	f.table.Err = &smithy.GenericAPIError{Code: "InternalServerError", Message: "store down"}

	resp, err := f.handler.Handle(context.Background(), Request{Operation: OperationList, UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)

	origins := logs.FilterMessage("Error origin").All()
	require.Len(t, origins, 1)
	assert.Equal(t, zap.DebugLevel, origins[0].Level)
	assert.Contains(t, origins[0].ContextMap()["stackTrace"], "TaskRepository")
}

func TestHandler_UnexpectedErrorIsInternalWithStackTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture(t, zap.New(core), nil)
	_, _ = f.table.PutItem(context.Background(), putTodo("u1", "t1"))
	f.signer.err = errors.New("boom")

	resp, err := f.handler.Handle(context.Background(), Request{Operation: OperationUploadURL, UserID: "u1", TodoID: "t1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperrors.ErrorTypeInternal, resp.Error.Type)
	assert.Equal(t, "internal error", resp.Error.Message)

	failures := logs.FilterMessage("Request failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "INTERNAL", failures[0].ContextMap()["errorType"])
	require.Len(t, logs.FilterMessage("Error origin").All(), 1)
}

func TestHandler_RejectionsDoNotLogStackTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture(t, zap.New(core), nil)

	resp, err := f.handler.Handle(context.Background(), Request{Operation: OperationUpdate, UserID: "u1", TodoID: "missing", Done: boolean(true)})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperrors.ErrorTypeNotFound, resp.Error.Type)

	assert.Empty(t, logs.FilterMessage("Error origin").All())
	assert.Len(t, logs.FilterMessage("Request rejected").All(), 1)
}
