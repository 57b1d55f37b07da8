package dal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"voluntariado-backend/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type memoryItem = map[string]types.AttributeValue

// MemoryClient is an in-process DatabaseClientInterface with DynamoDB
// semantics for conditions, ADD updates and all-or-nothing transactions.
// A single mutex serializes every operation.
type MemoryClient struct {
	mu        sync.Mutex
	keys      map[string]string
	tables    map[string]map[string]memoryItem
	sequences map[string]int64
}

// NewMemoryClient creates an empty store. keys maps each table name to its hash key attribute.
func NewMemoryClient(keys map[string]string) *MemoryClient {
	m := &MemoryClient{
		keys:      map[string]string{},
		tables:    map[string]map[string]memoryItem{},
		sequences: map[string]int64{},
	}
	for table, key := range keys {
		m.keys[table] = key
		m.tables[table] = map[string]memoryItem{}
	}
	return m
}

func (m *MemoryClient) table(name string) (map[string]memoryItem, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// GetItem retrieves an item by primary key
func (m *MemoryClient) GetItem(ctx context.Context, key models.QueryConfig, result interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(key.TableName)
	if err != nil {
		return err
	}
	item, ok := t[itemID(keyAttribute(key)[key.KeyName])]
	if !ok {
		return ErrItemNotFound
	}
	return attributevalue.UnmarshalMap(item, result)
}

// PutItem stores an item
func (m *MemoryClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	return m.put(tableName, item, nil)
}

// PutItemWithCondition stores an item only when cond holds
func (m *MemoryClient) PutItemWithCondition(ctx context.Context, tableName string, item interface{}, cond Condition) error {
	return m.put(tableName, item, &cond)
}

func (m *MemoryClient) put(tableName string, item interface{}, cond *Condition) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.idOf(tableName, av)
	if err != nil {
		return err
	}
	if cond != nil && !evaluate(*cond, m.tables[tableName][id]) {
		return ErrConditionFailed
	}
	m.tables[tableName][id] = av
	return nil
}

// UpdateItem applies upd to the row addressed by key, creating it when absent
func (m *MemoryClient) UpdateItem(ctx context.Context, key models.QueryConfig, upd Update, cond *Condition, result interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(key.TableName)
	if err != nil {
		return err
	}
	keyAV := keyAttribute(key)
	id := itemID(keyAV[key.KeyName])
	current := t[id]
	if cond != nil && !evaluate(*cond, current) {
		return ErrConditionFailed
	}

	updated, err := applyUpdate(current, keyAV, upd)
	if err != nil {
		return err
	}
	t[id] = updated

	if result != nil {
		return attributevalue.UnmarshalMap(updated, result)
	}
	return nil
}

// DeleteItem removes an item
func (m *MemoryClient) DeleteItem(ctx context.Context, key models.QueryConfig, cond *Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(key.TableName)
	if err != nil {
		return err
	}
	id := itemID(keyAttribute(key)[key.KeyName])
	if cond != nil && !evaluate(*cond, t[id]) {
		return ErrConditionFailed
	}
	delete(t, id)
	return nil
}

// QueryByIndex returns the items whose KeyName attribute equals KeyValue
func (m *MemoryClient) QueryByIndex(ctx context.Context, query models.QueryConfig, results interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(query.TableName)
	if err != nil {
		return err
	}
	want := keyAttribute(query)[query.KeyName]

	var items []memoryItem
	for _, item := range t {
		if av, ok := item[query.KeyName]; ok {
			if cmp, ok := compareValues(av, want); ok && cmp == 0 {
				items = append(items, item)
			}
		}
	}
	m.sortByKey(query.TableName, items)
	return attributevalue.UnmarshalListOfMaps(items, results)
}

// Scan returns every item of the table
func (m *MemoryClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(tableName)
	if err != nil {
		return err
	}
	items := make([]memoryItem, 0, len(t))
	for _, item := range t {
		items = append(items, item)
	}
	m.sortByKey(tableName, items)
	return attributevalue.UnmarshalListOfMaps(items, results)
}

// TransactWrite checks every condition first and applies the writes only when all hold
func (m *MemoryClient) TransactWrite(ctx context.Context, ops []TransactOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > MaxTransactItems {
		return fmt.Errorf("transaction has %d operations, limit is %d", len(ops), MaxTransactItems)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	type target struct {
		table string
		id    string
		key   memoryItem
		item  memoryItem
	}
	targets := make([]target, len(ops))
	seen := map[string]bool{}
	for i, op := range ops {
		if _, err := m.table(op.TableName); err != nil {
			return err
		}
		var tg target
		tg.table = op.TableName
		if op.Kind == OpPut {
			av, err := attributevalue.MarshalMap(op.Item)
			if err != nil {
				return fmt.Errorf("transaction operation %d: failed to marshal item: %w", i, err)
			}
			if tg.id, err = m.idOf(op.TableName, av); err != nil {
				return err
			}
			tg.item = av
		} else {
			tg.key = keyAttribute(op.Key)
			tg.id = itemID(tg.key[op.Key.KeyName])
		}
		if seen[tg.table+"|"+tg.id] {
			return fmt.Errorf("transaction operation %d: multiple operations on one item", i)
		}
		seen[tg.table+"|"+tg.id] = true
		targets[i] = tg
	}

	reasons := make([]string, len(ops))
	failed := false
	for i, op := range ops {
		reasons[i] = "None"
		if op.Condition != nil && !evaluate(*op.Condition, m.tables[targets[i].table][targets[i].id]) {
			reasons[i] = reasonConditionalCheckFailed
			failed = true
		}
	}
	if failed {
		return &TransactionCanceledError{Reasons: reasons}
	}

	staged := make([]memoryItem, len(ops))
	for i, op := range ops {
		if op.Kind != OpUpdate {
			continue
		}
		updated, err := applyUpdate(m.tables[targets[i].table][targets[i].id], targets[i].key, op.Update)
		if err != nil {
			return fmt.Errorf("transaction operation %d: %w", i, err)
		}
		staged[i] = updated
	}

	for i, op := range ops {
		t := m.tables[targets[i].table]
		switch op.Kind {
		case OpPut:
			t[targets[i].id] = targets[i].item
		case OpUpdate:
			t[targets[i].id] = staged[i]
		case OpDelete:
			delete(t, targets[i].id)
		}
	}
	return nil
}

// NextSequence increments and returns the named counter
func (m *MemoryClient) NextSequence(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequences[name]++
	return m.sequences[name], nil
}

// CreateTable registers a table using the HASH element of its key schema
func (m *MemoryClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := aws.ToString(input.TableName)
	if _, ok := m.tables[name]; ok {
		return fmt.Errorf("table %s already exists", name)
	}
	for _, k := range input.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			m.keys[name] = aws.ToString(k.AttributeName)
		}
	}
	m.tables[name] = map[string]memoryItem{}
	return nil
}

// DescribeTable reports registered tables as ACTIVE
func (m *MemoryClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(tableName)
	if err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(tableName),
			TableStatus: types.TableStatusActive,
			ItemCount:   aws.Int64(int64(len(t))),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(m.keys[tableName]), KeyType: types.KeyTypeHash},
			},
		},
	}, nil
}

// DeleteTable drops a table and its items
func (m *MemoryClient) DeleteTable(ctx context.Context, input *dynamodb.DeleteTableInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := aws.ToString(input.TableName)
	if _, err := m.table(name); err != nil {
		return err
	}
	delete(m.tables, name)
	delete(m.keys, name)
	return nil
}

func (m *MemoryClient) idOf(tableName string, av memoryItem) (string, error) {
	if _, err := m.table(tableName); err != nil {
		return "", err
	}
	keyName := m.keys[tableName]
	keyAV, ok := av[keyName]
	if !ok {
		return "", fmt.Errorf("item for %s is missing key attribute %s", tableName, keyName)
	}
	return itemID(keyAV), nil
}

func (m *MemoryClient) sortByKey(tableName string, items []memoryItem) {
	keyName := m.keys[tableName]
	sort.Slice(items, func(i, j int) bool {
		cmp, ok := compareValues(items[i][keyName], items[j][keyName])
		return ok && cmp < 0
	})
}

func itemID(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		if d, err := decimal.NewFromString(v.Value); err == nil {
			return "N:" + d.String()
		}
		return "N:" + v.Value
	case *types.AttributeValueMemberB:
		return "B:" + string(v.Value)
	}
	return fmt.Sprintf("%T", av)
}

func evaluate(c Condition, item memoryItem) bool {
	switch c.kind {
	case condExists:
		_, ok := item[c.attr]
		return ok
	case condNotExists:
		_, ok := item[c.attr]
		return !ok
	case condCompare:
		av, ok := item[c.attr]
		if !ok {
			return false
		}
		want, err := attributevalue.Marshal(c.value)
		if err != nil {
			return false
		}
		return compareOp(c.op, av, want)
	case condCompareAttr:
		a, okA := item[c.attr]
		b, okB := item[c.other]
		if !okA || !okB {
			return false
		}
		return compareOp(c.op, a, b)
	case condAnd:
		for _, child := range c.children {
			if !evaluate(child, item) {
				return false
			}
		}
		return true
	case condOr:
		for _, child := range c.children {
			if evaluate(child, item) {
				return true
			}
		}
		return false
	}
	return false
}

func compareOp(op string, a, b types.AttributeValue) bool {
	cmp, ok := compareValues(a, b)
	if !ok {
		return op == "<>"
	}
	switch op {
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// compareValues orders two scalar attribute values of the same type
func compareValues(a, b types.AttributeValue) (int, bool) {
	switch av := a.(type) {
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		da, errA := decimal.NewFromString(av.Value)
		db, errB := decimal.NewFromString(bv.Value)
		if errA != nil || errB != nil {
			return 0, false
		}
		return da.Cmp(db), true
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		if !ok {
			return 0, false
		}
		if av.Value == bv.Value {
			return 0, true
		}
		if !av.Value {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func applyUpdate(current, key memoryItem, upd Update) (memoryItem, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("empty update expression")
	}

	updated := make(memoryItem, len(current)+len(upd.Set))
	for k, v := range current {
		updated[k] = v
	}
	for k, v := range key {
		updated[k] = v
	}

	for field, value := range upd.Set {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", field, err)
		}
		updated[field] = av
	}

	for field, value := range upd.Add {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", field, err)
		}
		delta, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("ADD on %s requires a number", field)
		}
		d, err := decimal.NewFromString(delta.Value)
		if err != nil {
			return nil, err
		}
		if existing, ok := updated[field]; ok {
			n, ok := existing.(*types.AttributeValueMemberN)
			if !ok {
				return nil, fmt.Errorf("ADD on %s: existing value is not a number", field)
			}
			base, err := decimal.NewFromString(n.Value)
			if err != nil {
				return nil, err
			}
			d = base.Add(d)
		}
		updated[field] = &types.AttributeValueMemberN{Value: d.String()}
	}

	for _, field := range upd.Remove {
		delete(updated, field)
	}
	return updated, nil
}
