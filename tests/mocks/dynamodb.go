// Package mocks provides in-memory stand-ins for AWS clients used in tests.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FakeDynamoDB is an in-memory table keyed by a partition and a sort attribute.
// It understands the request shapes produced by the todo repository:
// equality key conditions, SET update expressions and attribute_exists conditions.
type FakeDynamoDB struct {
	mu       sync.Mutex
	hashKey  string
	rangeKey string
	items    map[string]map[string]types.AttributeValue
	PageSize int
	Err      error
	Calls    []string
}

// NewFakeDynamoDB creates an empty table with the given key attribute names
func NewFakeDynamoDB(hashKey, rangeKey string) *FakeDynamoDB {
	return &FakeDynamoDB{
		hashKey:  hashKey,
		rangeKey: rangeKey,
		items:    make(map[string]map[string]types.AttributeValue),
	}
}

// Len returns the number of stored items
func (f *FakeDynamoDB) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Item returns a copy of a stored item, or nil
func (f *FakeDynamoDB) Item(hash, rng string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[hash+"\x00"+rng]
	if !ok {
		return nil
	}
	return copyItem(item)
}

func (f *FakeDynamoDB) record(op string) error {
	f.Calls = append(f.Calls, op)
	return f.Err
}

func (f *FakeDynamoDB) storageKey(key map[string]types.AttributeValue) (string, string, string, error) {
	hash, ok := stringValue(key[f.hashKey])
	if !ok {
		return "", "", "", fmt.Errorf("missing key attribute %s", f.hashKey)
	}
	rng, ok := stringValue(key[f.rangeKey])
	if !ok {
		return "", "", "", fmt.Errorf("missing key attribute %s", f.rangeKey)
	}
	return hash + "\x00" + rng, hash, rng, nil
}

// Query returns the items of one partition ordered by sort key
func (f *FakeDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Query"); err != nil {
		return nil, err
	}

	if len(params.ExpressionAttributeValues) != 1 {
		return nil, errors.New("fake supports a single key condition value")
	}
	var partition string
	for _, v := range params.ExpressionAttributeValues {
		partition, _ = stringValue(v)
	}

	var matches []map[string]types.AttributeValue
	for _, item := range f.items {
		if v, _ := stringValue(item[f.hashKey]); v == partition {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, _ := stringValue(matches[i][f.rangeKey])
		b, _ := stringValue(matches[j][f.rangeKey])
		return a < b
	})

	if params.ExclusiveStartKey != nil {
		start, _ := stringValue(params.ExclusiveStartKey[f.rangeKey])
		idx := sort.Search(len(matches), func(i int) bool {
			v, _ := stringValue(matches[i][f.rangeKey])
			return v > start
		})
		matches = matches[idx:]
	}

	out := &dynamodb.QueryOutput{}
	if f.PageSize > 0 && len(matches) > f.PageSize {
		matches = matches[:f.PageSize]
		last := matches[len(matches)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			f.hashKey:  last[f.hashKey],
			f.rangeKey: last[f.rangeKey],
		}
	}

	for _, item := range matches {
		out.Items = append(out.Items, copyItem(item))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

// GetItem returns the item with the given key
func (f *FakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetItem"); err != nil {
		return nil, err
	}

	k, _, _, err := f.storageKey(params.Key)
	if err != nil {
		return nil, err
	}
	out := &dynamodb.GetItemOutput{}
	if item, ok := f.items[k]; ok {
		out.Item = copyItem(item)
	}
	return out, nil
}

// PutItem stores the item, replacing any item with the same key
func (f *FakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PutItem"); err != nil {
		return nil, err
	}

	k, _, _, err := f.storageKey(params.Item)
	if err != nil {
		return nil, err
	}
	f.items[k] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem applies a SET expression, creating the item unless an
// attribute_exists condition guards the write
func (f *FakeDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateItem"); err != nil {
		return nil, err
	}

	k, _, _, err := f.storageKey(params.Key)
	if err != nil {
		return nil, err
	}

	item, exists := f.items[k]
	if cond := aws.ToString(params.ConditionExpression); strings.Contains(cond, "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	if !exists {
		item = copyItem(params.Key)
	}

	expr := strings.TrimSpace(aws.ToString(params.UpdateExpression))
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("fake supports SET expressions only: %q", expr)
	}
	updated := make(map[string]types.AttributeValue)
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed clause %q", clause)
		}
		name := strings.TrimSpace(parts[0])
		if resolved, ok := params.ExpressionAttributeNames[name]; ok {
			name = resolved
		}
		value, ok := params.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, fmt.Errorf("unknown value placeholder in %q", clause)
		}
		item[name] = value
		updated[name] = value
	}
	f.items[k] = item

	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

// DeleteItem removes the item with the given key; absent keys are ignored
func (f *FakeDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteItem"); err != nil {
		return nil, err
	}

	k, _, _, err := f.storageKey(params.Key)
	if err != nil {
		return nil, err
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func stringValue(av types.AttributeValue) (string, bool) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
