package dal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"voluntariado-backend/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type testRow struct {
	ID       int64  `dynamodbav:"id"`
	Name     string `dynamodbav:"name"`
	Status   string `dynamodbav:"status"`
	Count    int    `dynamodbav:"count"`
	Capacity int    `dynamodbav:"capacity"`
	Owner    int64  `dynamodbav:"owner"`
}

type guardRow struct {
	PK string `dynamodbav:"pk"`
}

// MemoryClientTestSuite exercises the in-process client
type MemoryClientTestSuite struct {
	suite.Suite
	client *MemoryClient
	ctx    context.Context
}

// SetupTest runs before each test
func (suite *MemoryClientTestSuite) SetupTest() {
	suite.client = NewMemoryClient(map[string]string{
		"rows":   "id",
		"guards": "pk",
	})
	suite.ctx = context.Background()
}

func (suite *MemoryClientTestSuite) put(row testRow) {
	require.NoError(suite.T(), suite.client.PutItem(suite.ctx, "rows", row))
}

func (suite *MemoryClientTestSuite) get(id int64) testRow {
	var row testRow
	require.NoError(suite.T(), suite.client.GetItem(suite.ctx, models.IDKey("rows", id), &row))
	return row
}

func (suite *MemoryClientTestSuite) TestGetItemNotFound() {
	var row testRow
	err := suite.client.GetItem(suite.ctx, models.IDKey("rows", 42), &row)
	assert.ErrorIs(suite.T(), err, ErrItemNotFound)
}

func (suite *MemoryClientTestSuite) TestUnknownTable() {
	err := suite.client.PutItem(suite.ctx, "missing", testRow{ID: 1})
	assert.ErrorIs(suite.T(), err, ErrTableNotFound)
}

func (suite *MemoryClientTestSuite) TestPutAndGet() {
	suite.put(testRow{ID: 1, Name: "first", Status: "Active"})

	row := suite.get(1)
	assert.Equal(suite.T(), "first", row.Name)
	assert.Equal(suite.T(), "Active", row.Status)
}

func (suite *MemoryClientTestSuite) TestPutItemWithConditionRejectsDuplicate() {
	cond := AttributeNotExists("pk")
	require.NoError(suite.T(), suite.client.PutItemWithCondition(suite.ctx, "guards", guardRow{PK: "a#1"}, cond))

	err := suite.client.PutItemWithCondition(suite.ctx, "guards", guardRow{PK: "a#1"}, cond)
	assert.ErrorIs(suite.T(), err, ErrConditionFailed)
}

func (suite *MemoryClientTestSuite) TestUpdateItemAddAndSet() {
	suite.put(testRow{ID: 1, Count: 2, Capacity: 5})

	var updated testRow
	err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1), Update{
		Set: map[string]interface{}{"status": "Active"},
		Add: map[string]interface{}{"count": 1},
	}, nil, &updated)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, updated.Count)
	assert.Equal(suite.T(), "Active", updated.Status)
	assert.Equal(suite.T(), 3, suite.get(1).Count)
}

func (suite *MemoryClientTestSuite) TestUpdateItemCreatesMissingRow() {
	err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 7), Update{
		Add: map[string]interface{}{"count": 4},
	}, nil, nil)

	require.NoError(suite.T(), err)
	row := suite.get(7)
	assert.Equal(suite.T(), int64(7), row.ID)
	assert.Equal(suite.T(), 4, row.Count)
}

func (suite *MemoryClientTestSuite) TestUpdateItemConditionOnAttributes() {
	suite.put(testRow{ID: 1, Count: 5, Capacity: 5, Status: "Active"})

	cond := And(Equal("status", "Active"), LessThanAttr("count", "capacity"))
	err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1), Update{
		Add: map[string]interface{}{"count": 1},
	}, &cond, nil)

	assert.ErrorIs(suite.T(), err, ErrConditionFailed)
	assert.Equal(suite.T(), 5, suite.get(1).Count)
}

func (suite *MemoryClientTestSuite) TestUpdateItemOrCondition() {
	suite.put(testRow{ID: 1, Status: "Accepted"})

	cond := Or(Equal("status", "Pending"), Equal("status", "Accepted"))
	err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1), Update{
		Set: map[string]interface{}{"status": "Withdrawn"},
	}, &cond, nil)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Withdrawn", suite.get(1).Status)

	err = suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1), Update{
		Set: map[string]interface{}{"status": "Accepted"},
	}, &cond, nil)
	assert.ErrorIs(suite.T(), err, ErrConditionFailed)
}

func (suite *MemoryClientTestSuite) TestUpdateItemRemove() {
	suite.put(testRow{ID: 1, Name: "x"})

	err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1), Update{Remove: []string{"name"}}, nil, nil)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), suite.get(1).Name)
}

func (suite *MemoryClientTestSuite) TestDeleteItemWithCondition() {
	suite.put(testRow{ID: 1, Status: "Active"})

	err := suite.client.DeleteItem(suite.ctx, models.IDKey("rows", 1), Cond(Equal("status", "Closed")))
	assert.ErrorIs(suite.T(), err, ErrConditionFailed)

	require.NoError(suite.T(), suite.client.DeleteItem(suite.ctx, models.IDKey("rows", 1), nil))
	var row testRow
	assert.ErrorIs(suite.T(), suite.client.GetItem(suite.ctx, models.IDKey("rows", 1), &row), ErrItemNotFound)
}

func (suite *MemoryClientTestSuite) TestQueryByIndexFiltersAndSorts() {
	suite.put(testRow{ID: 3, Owner: 10})
	suite.put(testRow{ID: 1, Owner: 10})
	suite.put(testRow{ID: 2, Owner: 20})

	var rows []testRow
	err := suite.client.QueryByIndex(suite.ctx, models.NumberIndex("rows", "owner-index", "owner", 10), &rows)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 2)
	assert.Equal(suite.T(), int64(1), rows[0].ID)
	assert.Equal(suite.T(), int64(3), rows[1].ID)
}

func (suite *MemoryClientTestSuite) TestScan() {
	suite.put(testRow{ID: 2})
	suite.put(testRow{ID: 10})
	suite.put(testRow{ID: 1})

	var rows []testRow
	require.NoError(suite.T(), suite.client.Scan(suite.ctx, "rows", &rows))
	require.Len(suite.T(), rows, 3)
	assert.Equal(suite.T(), []int64{1, 2, 10}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
}

func (suite *MemoryClientTestSuite) TestTransactWriteIsAllOrNothing() {
	suite.put(testRow{ID: 1, Count: 0, Capacity: 1, Status: "Active"})
	require.NoError(suite.T(), suite.client.PutItem(suite.ctx, "guards", guardRow{PK: "taken"}))

	ops := []TransactOp{
		UpdateOp(models.IDKey("rows", 1), Update{Add: map[string]interface{}{"count": 1}}, Cond(LessThanAttr("count", "capacity"))),
		PutOp("guards", guardRow{PK: "taken"}, Cond(AttributeNotExists("pk"))),
	}
	err := suite.client.TransactWrite(suite.ctx, ops)

	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, ErrConditionFailed)
	assert.Equal(suite.T(), 1, FailedOperation(err))
	assert.Equal(suite.T(), 0, suite.get(1).Count)
}

func (suite *MemoryClientTestSuite) TestTransactWriteAppliesAll() {
	suite.put(testRow{ID: 1, Capacity: 2, Status: "Active"})

	ops := []TransactOp{
		UpdateOp(models.IDKey("rows", 1), Update{Add: map[string]interface{}{"count": 1}}, Cond(LessThanAttr("count", "capacity"))),
		PutOp("guards", guardRow{PK: "new"}, Cond(AttributeNotExists("pk"))),
		CheckOp(models.IDKey("rows", 1), Equal("status", "Active")),
	}
	require.NoError(suite.T(), suite.client.TransactWrite(suite.ctx, ops))
	assert.Equal(suite.T(), 1, suite.get(1).Count)

	var g guardRow
	assert.NoError(suite.T(), suite.client.GetItem(suite.ctx, models.StringKey("guards", "pk", "new"), &g))
}

func (suite *MemoryClientTestSuite) TestTransactWriteRejectsDuplicateTargets() {
	ops := []TransactOp{
		PutOp("rows", testRow{ID: 1}, nil),
		DeleteOp(models.IDKey("rows", 1), nil),
	}
	err := suite.client.TransactWrite(suite.ctx, ops)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrConditionFailed)
}

func (suite *MemoryClientTestSuite) TestConcurrentConditionalIncrement() {
	suite.put(testRow{ID: 1, Capacity: 3})

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := suite.client.UpdateItem(suite.ctx, models.IDKey("rows", 1),
				Update{Add: map[string]interface{}{"count": 1}}, Cond(LessThanAttr("count", "capacity")), nil)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(suite.T(), 3, successes)
	assert.Equal(suite.T(), 3, suite.get(1).Count)
}

func (suite *MemoryClientTestSuite) TestNextSequence() {
	first, err := suite.client.NextSequence(suite.ctx, "users")
	require.NoError(suite.T(), err)
	second, err := suite.client.NextSequence(suite.ctx, "users")
	require.NoError(suite.T(), err)
	other, err := suite.client.NextSequence(suite.ctx, "badges")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), int64(1), first)
	assert.Equal(suite.T(), int64(2), second)
	assert.Equal(suite.T(), int64(1), other)
}

func (suite *MemoryClientTestSuite) TestTableManagement() {
	err := suite.client.CreateTable(suite.ctx, &dynamodb.CreateTableInput{
		TableName: aws.String("extra"),
		KeySchema: []types.KeySchemaElement{{AttributeName: aws.String("code"), KeyType: types.KeyTypeHash}},
	})
	require.NoError(suite.T(), err)

	out, err := suite.client.DescribeTable(suite.ctx, "extra")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), types.TableStatusActive, out.Table.TableStatus)

	require.NoError(suite.T(), suite.client.DeleteTable(suite.ctx, &dynamodb.DeleteTableInput{TableName: aws.String("extra")}))
	_, err = suite.client.DescribeTable(suite.ctx, "extra")
	assert.ErrorIs(suite.T(), err, ErrTableNotFound)
}

func TestMemoryClientTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryClientTestSuite))
}

func TestConditionRendering(t *testing.T) {
	b := newExprBuilder()
	expr, err := b.condition(And(
		Equal("estado", "Active"),
		LessThanAttr("voluntariosInscritos", "voluntariosRequeridos"),
	))

	require.NoError(t, err)
	assert.Equal(t, "(#n0 = :v0) AND (#n1 < #n2)", expr)
	assert.Equal(t, "estado", b.names["#n0"])
	assert.Equal(t, "voluntariosInscritos", b.names["#n1"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Active"}, b.values[":v0"])
}

func TestConditionRenderingReusesNames(t *testing.T) {
	b := newExprBuilder()
	expr, err := b.condition(Or(Equal("estado", "Pending"), Equal("estado", "Accepted")))

	require.NoError(t, err)
	assert.Equal(t, "(#n0 = :v0) OR (#n0 = :v1)", expr)
	assert.Len(t, b.names, 1)
}

func TestUpdateRendering(t *testing.T) {
	b := newExprBuilder()
	expr, err := b.update(Update{
		Set:    map[string]interface{}{"estado": "Completed", "fechaRespuesta": "2024-01-01"},
		Add:    map[string]interface{}{"horasVoluntariado": 4.5},
		Remove: []string{"notas"},
	})

	require.NoError(t, err)
	assert.Equal(t, "SET #n0 = :v0, #n1 = :v1 ADD #n2 :v2 REMOVE #n3", expr)
	assert.Equal(t, "horasVoluntariado", b.names["#n2"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "4.5"}, b.values[":v2"])
}

func TestUpdateRenderingEmpty(t *testing.T) {
	_, err := newExprBuilder().update(Update{})
	assert.Error(t, err)
}

func TestBuildTransactItem(t *testing.T) {
	item, err := buildTransactItem(UpdateOp(models.IDKey("opps", 2), Update{
		Add: map[string]interface{}{"voluntariosInscritos": 1},
	}, Cond(GreaterThan("voluntariosRequeridos", 0))))

	require.NoError(t, err)
	require.NotNil(t, item.Update)
	assert.Equal(t, "opps", aws.ToString(item.Update.TableName))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, item.Update.Key["id"])
	assert.Equal(t, "ADD #n1 :v1", aws.ToString(item.Update.UpdateExpression))
	assert.Equal(t, "#n0 > :v0", aws.ToString(item.Update.ConditionExpression))

	_, err = buildTransactItem(TransactOp{Kind: OpCheck, TableName: "opps", Key: models.IDKey("opps", 2)})
	assert.Error(t, err)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	ccf := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	assert.ErrorIs(t, translateError(ccf), ErrConditionFailed)

	tce := &types.TransactionCanceledException{CancellationReasons: []types.CancellationReason{
		{Code: aws.String("None")},
		{Code: aws.String("ConditionalCheckFailed")},
	}}
	err := translateError(tce)
	assert.ErrorIs(t, err, ErrConditionFailed)
	assert.Equal(t, 1, FailedOperation(err))

	conflict := translateError(&types.TransactionCanceledException{CancellationReasons: []types.CancellationReason{
		{Code: aws.String("TransactionConflict")},
	}})
	assert.NotErrorIs(t, conflict, ErrConditionFailed)
	assert.Equal(t, -1, FailedOperation(conflict))

	rnf := &types.ResourceNotFoundException{Message: aws.String("no table")}
	assert.ErrorIs(t, translateError(rnf), ErrTableNotFound)

	api := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	wrapped := translateError(api)
	assert.Contains(t, wrapped.Error(), "ThrottlingException")
	var apiErr smithy.APIError
	assert.True(t, errors.As(wrapped, &apiErr))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain))
}

func TestPrintPrettyJSON(t *testing.T) {
	assert.Equal(t, "null", PrintPrettyJSON(nil))
	assert.Contains(t, PrintPrettyJSON(map[string]int{"value": 123}), "\"value\": 123")
	assert.Contains(t, PrintPrettyJSON(make(chan int)), "Failed to generate JSON")
}
