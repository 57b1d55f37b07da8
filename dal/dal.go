package dal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CountersTable holds one sequence item per entity
const CountersTable = "counters"

type DynamoDBClient struct {
	client *dynamodb.Client
	config *models.Config
	logger logger.Logger
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // session token
		))
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Override endpoint for local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	dbClient := &DynamoDBClient{
		client: client,
		config: cfg,
		logger: log,
	}

	log.Info("✅ DynamoDB client initialized successfully")
	return dbClient, nil
}

// GetItem retrieves an item by primary key. Returns ErrItemNotFound when absent.
func (db *DynamoDBClient) GetItem(ctx context.Context, key models.QueryConfig, result interface{}) error {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(key.TableName),
		Key:            keyAttribute(key),
		ConsistentRead: aws.Bool(true),
	}

	output, err := db.client.GetItem(ctx, input)
	if err != nil {
		db.logger.Errorf("Failed to get item from %s: %v", key.TableName, err)
		return translateError(err)
	}

	if output.Item == nil {
		return ErrItemNotFound
	}

	return attributevalue.UnmarshalMap(output.Item, result)
}

// PutItem stores an item in DynamoDB
func (db *DynamoDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}

	_, err = db.client.PutItem(ctx, input)
	return translateError(err)
}

// PutItemWithCondition stores an item only when cond holds
func (db *DynamoDBClient) PutItemWithCondition(ctx context.Context, tableName string, item interface{}, cond Condition) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	b := newExprBuilder()
	expr, err := b.condition(cond)
	if err != nil {
		return err
	}

	input := &dynamodb.PutItemInput{
		TableName:                 aws.String(tableName),
		Item:                      av,
		ConditionExpression:       aws.String(expr),
		ExpressionAttributeNames:  b.attributeNames(),
		ExpressionAttributeValues: b.attributeValues(),
	}

	_, err = db.client.PutItem(ctx, input)
	return translateError(err)
}

// UpdateItem applies upd to the row addressed by key. When result is not nil
// it receives the item as it is after the update.
func (db *DynamoDBClient) UpdateItem(ctx context.Context, key models.QueryConfig, upd Update, cond *Condition, result interface{}) error {
	b := newExprBuilder()
	updateExpression, err := b.update(upd)
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(key.TableName),
		Key:              keyAttribute(key),
		UpdateExpression: aws.String(updateExpression),
		ReturnValues:     types.ReturnValueAllNew,
	}

	if cond != nil {
		condExpression, err := b.condition(*cond)
		if err != nil {
			return err
		}
		input.ConditionExpression = aws.String(condExpression)
	}
	input.ExpressionAttributeNames = b.attributeNames()
	input.ExpressionAttributeValues = b.attributeValues()

	output, err := db.client.UpdateItem(ctx, input)
	if err != nil {
		return translateError(err)
	}

	if result != nil {
		return attributevalue.UnmarshalMap(output.Attributes, result)
	}
	return nil
}

// DeleteItem deletes an item from DynamoDB
func (db *DynamoDBClient) DeleteItem(ctx context.Context, key models.QueryConfig, cond *Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(key.TableName),
		Key:       keyAttribute(key),
	}

	if cond != nil {
		b := newExprBuilder()
		expr, err := b.condition(*cond)
		if err != nil {
			return err
		}
		input.ConditionExpression = aws.String(expr)
		input.ExpressionAttributeNames = b.attributeNames()
		input.ExpressionAttributeValues = b.attributeValues()
	}

	_, err := db.client.DeleteItem(ctx, input)
	return translateError(err)
}

// QueryByIndex queries items using a global secondary index, following all pages
func (db *DynamoDBClient) QueryByIndex(ctx context.Context, query models.QueryConfig, results interface{}) error {
	keyValue := keyAttribute(query)[query.KeyName]
	input := &dynamodb.QueryInput{
		TableName:              aws.String(query.TableName),
		KeyConditionExpression: aws.String("#kn0 = :kv0"),
		ExpressionAttributeNames: map[string]string{
			"#kn0": query.KeyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kv0": keyValue,
		},
	}
	if query.IndexName != "" {
		input.IndexName = aws.String(query.IndexName)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			db.logger.Errorf("Failed to query %s/%s: %v", query.TableName, query.IndexName, err)
			return translateError(err)
		}
		items = append(items, page.Items...)
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// Scan scans the entire table
func (db *DynamoDBClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			db.logger.Errorf("Failed to scan %s: %v", tableName, err)
			return translateError(err)
		}
		items = append(items, page.Items...)
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// TransactWrite executes ops atomically. A failed condition surfaces as
// *TransactionCanceledError, which matches ErrConditionFailed.
func (db *DynamoDBClient) TransactWrite(ctx context.Context, ops []TransactOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > MaxTransactItems {
		return fmt.Errorf("transaction has %d operations, limit is %d", len(ops), MaxTransactItems)
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for i, op := range ops {
		item, err := buildTransactItem(op)
		if err != nil {
			return fmt.Errorf("transaction operation %d: %w", i, err)
		}
		items = append(items, item)
	}

	_, err := db.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		db.logger.Debugf("Transaction of %d operations failed: %v", len(ops), err)
	}
	return translateError(err)
}

func buildTransactItem(op TransactOp) (types.TransactWriteItem, error) {
	b := newExprBuilder()
	var condExpr *string
	if op.Condition != nil {
		expr, err := b.condition(*op.Condition)
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		condExpr = aws.String(expr)
	}

	switch op.Kind {
	case OpPut:
		av, err := attributevalue.MarshalMap(op.Item)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("failed to marshal item: %w", err)
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                 aws.String(op.TableName),
			Item:                      av,
			ConditionExpression:       condExpr,
			ExpressionAttributeNames:  b.attributeNames(),
			ExpressionAttributeValues: b.attributeValues(),
		}}, nil
	case OpUpdate:
		updateExpression, err := b.update(op.Update)
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(op.TableName),
			Key:                       keyAttribute(op.Key),
			UpdateExpression:          aws.String(updateExpression),
			ConditionExpression:       condExpr,
			ExpressionAttributeNames:  b.attributeNames(),
			ExpressionAttributeValues: b.attributeValues(),
		}}, nil
	case OpDelete:
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName:                 aws.String(op.TableName),
			Key:                       keyAttribute(op.Key),
			ConditionExpression:       condExpr,
			ExpressionAttributeNames:  b.attributeNames(),
			ExpressionAttributeValues: b.attributeValues(),
		}}, nil
	case OpCheck:
		if condExpr == nil {
			return types.TransactWriteItem{}, errors.New("condition check without condition")
		}
		return types.TransactWriteItem{ConditionCheck: &types.ConditionCheck{
			TableName:                 aws.String(op.TableName),
			Key:                       keyAttribute(op.Key),
			ConditionExpression:       condExpr,
			ExpressionAttributeNames:  b.attributeNames(),
			ExpressionAttributeValues: b.attributeValues(),
		}}, nil
	}
	return types.TransactWriteItem{}, fmt.Errorf("unknown operation kind %d", op.Kind)
}

// NextSequence atomically increments and returns the named counter
func (db *DynamoDBClient) NextSequence(ctx context.Context, name string) (int64, error) {
	output, err := db.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(db.config.TableName(CountersTable)),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression:          aws.String("ADD #seq :one"),
		ExpressionAttributeNames:  map[string]string{"#seq": "seq"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		db.logger.Errorf("Failed to advance sequence %s: %v", name, err)
		return 0, translateError(err)
	}

	seq, ok := output.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("sequence %s returned no value", name)
	}
	return strconv.ParseInt(seq.Value, 10, 64)
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return translateError(err)
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}
	output, err := db.client.DescribeTable(ctx, input)
	return output, translateError(err)
}

// DeleteTable deletes a table
func (db *DynamoDBClient) DeleteTable(ctx context.Context, input *dynamodb.DeleteTableInput) error {
	_, err := db.client.DeleteTable(ctx, input)
	return translateError(err)
}

// PrintPrettyJSON renders v as indented JSON for debug logs
func PrintPrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("Failed to generate JSON: %v", err)
	}
	return string(b)
}
