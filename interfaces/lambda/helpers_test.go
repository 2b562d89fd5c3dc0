package lambda

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// putTodo seeds a stored todo directly in the table
func putTodo(userID, todoID string) *awsdynamodb.PutItemInput {
	return &awsdynamodb.PutItemInput{
		TableName: aws.String("Todos-test"),
		Item: map[string]types.AttributeValue{
			"userId":    &types.AttributeValueMemberS{Value: userID},
			"todoId":    &types.AttributeValueMemberS{Value: todoID},
			"name":      &types.AttributeValueMemberS{Value: "seeded"},
			"dueDate":   &types.AttributeValueMemberS{Value: "2024-01-01"},
			"createdAt": &types.AttributeValueMemberS{Value: "2024-01-01T00:00:00.000Z"},
			"done":      &types.AttributeValueMemberBOOL{Value: false},
		},
	}
}
