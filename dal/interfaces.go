package dal

import (
	"context"
	"voluntariado-backend/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DatabaseClientInterface defines the contract for database operations
type DatabaseClientInterface interface {
	// Core CRUD operations
	GetItem(ctx context.Context, key models.QueryConfig, result interface{}) error
	PutItem(ctx context.Context, tableName string, item interface{}) error
	PutItemWithCondition(ctx context.Context, tableName string, item interface{}, cond Condition) error
	UpdateItem(ctx context.Context, key models.QueryConfig, upd Update, cond *Condition, result interface{}) error
	DeleteItem(ctx context.Context, key models.QueryConfig, cond *Condition) error

	// Query and Scan operations
	QueryByIndex(ctx context.Context, query models.QueryConfig, results interface{}) error
	Scan(ctx context.Context, tableName string, results interface{}) error

	// Transactions and sequences
	TransactWrite(ctx context.Context, ops []TransactOp) error
	NextSequence(ctx context.Context, name string) (int64, error)

	// Table management operations
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
	DeleteTable(ctx context.Context, input *dynamodb.DeleteTableInput) error
}

// MaxTransactItems is the DynamoDB limit of operations per TransactWriteItems call
const MaxTransactItems = 100
