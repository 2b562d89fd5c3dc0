package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"todo-backend/application/ports"
	"todo-backend/domain/core/entities"
	apperrors "todo-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	// Attribute names of the todos table keys
	partitionKey = "userId"
	sortKey      = "todoId"

	operationList   = "list"
	operationGet    = "get"
	operationCreate = "create"
	operationUpdate = "update"
	operationDelete = "delete"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repository
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Verify that the real DynamoDB client implements our interface
var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// TaskRepository implements ports.TaskRepository on a DynamoDB table
// partitioned by userId and sorted by todoId.
type TaskRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

// ListByOwner returns every todo in the owner's partition, following all result pages
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Task, error) {
	r.logger.Info("Getting all todos for user", zap.String("userId", ownerID))

	keyCond := expression.Key(partitionKey).Equal(expression.Value(ownerID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, r.fail(operationList, err, zap.String("userId", ownerID))
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	tasks := make([]*entities.Task, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.fail(operationList, err, zap.String("userId", ownerID))
		}

		var items []*entities.Task
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, r.fail(operationList, fmt.Errorf("failed to unmarshal todos: %w", err), zap.String("userId", ownerID))
		}
		tasks = append(tasks, items...)
	}

	return tasks, nil
}

// Get returns a single todo or a not found error
func (r *TaskRepository) Get(ctx context.Context, ownerID, itemID string) (*entities.Task, error) {
	r.logger.Info("Getting todo",
		zap.String("userId", ownerID),
		zap.String("todoId", itemID),
	)

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(ownerID, itemID),
	})
	if err != nil {
		return nil, r.fail(operationGet, err,
			zap.String("userId", ownerID),
			zap.String("todoId", itemID),
		)
	}

	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError("todo")
	}

	var task entities.Task
	if err := attributevalue.UnmarshalMap(result.Item, &task); err != nil {
		return nil, r.fail(operationGet, fmt.Errorf("failed to unmarshal todo: %w", err),
			zap.String("todoId", itemID),
		)
	}

	return &task, nil
}

// Create writes the todo unconditionally; an existing record with the same key is replaced
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	r.logger.Info("Creating todo", zap.Any("todo", task))

	av, err := attributevalue.MarshalMap(task)
	if err != nil {
		return nil, r.fail(operationCreate, fmt.Errorf("failed to marshal todo: %w", err), zap.Any("todo", task))
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return nil, r.fail(operationCreate, err, zap.Any("todo", task))
	}

	return task, nil
}

// Update overwrites name, dueDate and done. The write is conditional on the record
// existing, so a missing todo yields a not found error instead of a partial upsert.
func (r *TaskRepository) Update(ctx context.Context, ownerID, itemID string, update entities.TaskUpdate) error {
	r.logger.Info("Updating todo",
		zap.String("userId", ownerID),
		zap.String("todoId", itemID),
	)

	set := expression.Set(expression.Name("name"), expression.Value(update.Name)).
		Set(expression.Name("dueDate"), expression.Value(update.DueDate)).
		Set(expression.Name("done"), expression.Value(update.Done))
	cond := expression.AttributeExists(expression.Name(sortKey))

	expr, err := expression.NewBuilder().
		WithUpdate(set).
		WithCondition(cond).
		Build()
	if err != nil {
		return r.fail(operationUpdate, err, zap.String("todoId", itemID))
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(ownerID, itemID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.logger.Warn("Todo to update does not exist",
				zap.String("userId", ownerID),
				zap.String("todoId", itemID),
			)
			return apperrors.NewNotFoundError("todo").WithCause(err)
		}
		return r.fail(operationUpdate, err,
			zap.String("userId", ownerID),
			zap.String("todoId", itemID),
		)
	}

	return nil
}

// Delete removes the todo; a missing record is not an error
func (r *TaskRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	r.logger.Info("Deleting todo",
		zap.String("userId", ownerID),
		zap.String("todoId", itemID),
	)

	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(ownerID, itemID),
	}); err != nil {
		return r.fail(operationDelete, err,
			zap.String("userId", ownerID),
			zap.String("todoId", itemID),
		)
	}

	return nil
}

// key builds the composite primary key of a todo
func (r *TaskRepository) key(ownerID, itemID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		partitionKey: &types.AttributeValueMemberS{Value: ownerID},
		sortKey:      &types.AttributeValueMemberS{Value: itemID},
	}
}

// fail logs the store fault with the key fields and returns an access error carrying it
func (r *TaskRepository) fail(operation string, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("operation", operation),
		zap.String("table", r.tableName),
		zap.Error(err),
	)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("awsErrorCode", apiErr.ErrorCode()),
			zap.String("awsErrorFault", apiErr.ErrorFault().String()),
		)
	}

	r.logger.Error(fmt.Sprintf("Error on todo %s", operation), fields...)
	return apperrors.NewAccessError(operation, err)
}
