package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-social-nosql/internal/pkg/deadline"
)

// table bundles what every repo needs to talk to one DynamoDB table.
type table struct {
	client  *dynamodb.Client
	name    string
	timeout time.Duration
}

// bound limits a single storage call to the configured timeout.
func (t table) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return deadline.Bound(ctx, t.timeout)
}

func (t table) put(ctx context.Context, what string, v interface{}) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", what, err)
	}
	ctx, cancel := t.bound(ctx)
	defer cancel()
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// get loads the item under key into out and reports whether it existed.
func (t table) get(ctx context.Context, key map[string]types.AttributeValue, out interface{}) (bool, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	res, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if res.Item == nil {
		return false, nil
	}
	return true, attributevalue.UnmarshalMap(res.Item, out)
}

// queryAll drains a query across pages.
func (t table) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	input.TableName = aws.String(t.name)
	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(t.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// isConditionFailed reports whether err is a failed ConditionExpression.
func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Keys are sorted so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := &updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// buildAppendExpr appends values to the list attribute field, creating the
// list when it is absent.
func buildAppendExpr(field string, values interface{}) (*updateExpr, error) {
	av, err := attributevalue.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal field %s: %w", field, err)
	}
	return &updateExpr{
		Expr:  "SET #l = list_append(if_not_exists(#l, :empty), :items), #u = :now",
		Names: map[string]string{"#l": field, "#u": fieldUpdatedAt},
		Values: map[string]types.AttributeValue{
			":items": av,
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	}, nil
}
