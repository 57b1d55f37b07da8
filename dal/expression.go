package dal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"voluntariado-backend/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type conditionKind int

const (
	condExists conditionKind = iota
	condNotExists
	condCompare
	condCompareAttr
	condAnd
	condOr
)

// Condition is a structured condition expression. Both clients evaluate it:
// DynamoDB renders it into an expression string, the memory client
// evaluates it against the stored attributes.
type Condition struct {
	kind     conditionKind
	attr     string
	op       string
	value    interface{}
	other    string
	children []Condition
}

// AttributeExists is true when attr is present on the item
func AttributeExists(attr string) Condition {
	return Condition{kind: condExists, attr: attr}
}

// AttributeNotExists is true when attr is absent, including when the item does not exist
func AttributeNotExists(attr string) Condition {
	return Condition{kind: condNotExists, attr: attr}
}

// Equal compares attr = value
func Equal(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: "=", value: value}
}

// NotEqual compares attr <> value
func NotEqual(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: "<>", value: value}
}

// LessThan compares attr < value
func LessThan(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: "<", value: value}
}

// GreaterThan compares attr > value
func GreaterThan(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: ">", value: value}
}

// LessOrEqual compares attr <= value
func LessOrEqual(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: "<=", value: value}
}

// GreaterOrEqual compares attr >= value
func GreaterOrEqual(attr string, value interface{}) Condition {
	return Condition{kind: condCompare, attr: attr, op: ">=", value: value}
}

// LessThanAttr compares two attributes of the same item
func LessThanAttr(attr, other string) Condition {
	return Condition{kind: condCompareAttr, attr: attr, op: "<", other: other}
}

// And joins conditions that must all hold
func And(conds ...Condition) Condition {
	return Condition{kind: condAnd, children: conds}
}

// Or joins conditions of which at least one must hold
func Or(conds ...Condition) Condition {
	return Condition{kind: condOr, children: conds}
}

// Update describes an UpdateItem expression
type Update struct {
	Set    map[string]interface{}
	Add    map[string]interface{}
	Remove []string
}

// IsEmpty reports whether the update has no actions
func (u Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.Add) == 0 && len(u.Remove) == 0
}

// exprBuilder collects placeholders while rendering expressions
type exprBuilder struct {
	names  map[string]string
	values map[string]types.AttributeValue
	byAttr map[string]string
}

func newExprBuilder() *exprBuilder {
	return &exprBuilder{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
		byAttr: map[string]string{},
	}
}

func (b *exprBuilder) name(attr string) string {
	if p, ok := b.byAttr[attr]; ok {
		return p
	}
	p := "#n" + strconv.Itoa(len(b.byAttr))
	b.byAttr[attr] = p
	b.names[p] = attr
	return p
}

func (b *exprBuilder) value(v interface{}) (string, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal expression value: %w", err)
	}
	p := ":v" + strconv.Itoa(len(b.values))
	b.values[p] = av
	return p, nil
}

func (b *exprBuilder) condition(c Condition) (string, error) {
	switch c.kind {
	case condExists:
		return "attribute_exists(" + b.name(c.attr) + ")", nil
	case condNotExists:
		return "attribute_not_exists(" + b.name(c.attr) + ")", nil
	case condCompare:
		p, err := b.value(c.value)
		if err != nil {
			return "", err
		}
		return b.name(c.attr) + " " + c.op + " " + p, nil
	case condCompareAttr:
		return b.name(c.attr) + " " + c.op + " " + b.name(c.other), nil
	case condAnd, condOr:
		sep := " AND "
		if c.kind == condOr {
			sep = " OR "
		}
		parts := make([]string, 0, len(c.children))
		for _, child := range c.children {
			s, err := b.condition(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+s+")")
		}
		return strings.Join(parts, sep), nil
	}
	return "", fmt.Errorf("unknown condition kind %d", c.kind)
}

func (b *exprBuilder) update(u Update) (string, error) {
	var clauses []string

	if len(u.Set) > 0 {
		var parts []string
		for _, field := range sortedKeys(u.Set) {
			p, err := b.value(u.Set[field])
			if err != nil {
				return "", err
			}
			parts = append(parts, b.name(field)+" = "+p)
		}
		clauses = append(clauses, "SET "+strings.Join(parts, ", "))
	}

	if len(u.Add) > 0 {
		var parts []string
		for _, field := range sortedKeys(u.Add) {
			p, err := b.value(u.Add[field])
			if err != nil {
				return "", err
			}
			parts = append(parts, b.name(field)+" "+p)
		}
		clauses = append(clauses, "ADD "+strings.Join(parts, ", "))
	}

	if len(u.Remove) > 0 {
		parts := make([]string, 0, len(u.Remove))
		for _, field := range u.Remove {
			parts = append(parts, b.name(field))
		}
		clauses = append(clauses, "REMOVE "+strings.Join(parts, ", "))
	}

	if len(clauses) == 0 {
		return "", fmt.Errorf("empty update expression")
	}
	return strings.Join(clauses, " "), nil
}

// the SDK rejects empty placeholder maps
func (b *exprBuilder) attributeNames() map[string]string {
	if len(b.names) == 0 {
		return nil
	}
	return b.names
}

func (b *exprBuilder) attributeValues() map[string]types.AttributeValue {
	if len(b.values) == 0 {
		return nil
	}
	return b.values
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OpKind is the type of a transactional write
type OpKind int

const (
	OpPut OpKind = iota
	OpUpdate
	OpDelete
	OpCheck
)

// TransactOp is one element of a TransactWrite call
type TransactOp struct {
	Kind      OpKind
	TableName string
	Key       models.QueryConfig
	Item      interface{}
	Update    Update
	Condition *Condition
}

// PutOp inserts or replaces item, optionally guarded by cond
func PutOp(table string, item interface{}, cond *Condition) TransactOp {
	return TransactOp{Kind: OpPut, TableName: table, Item: item, Condition: cond}
}

// UpdateOp applies upd to the row addressed by key
func UpdateOp(key models.QueryConfig, upd Update, cond *Condition) TransactOp {
	return TransactOp{Kind: OpUpdate, TableName: key.TableName, Key: key, Update: upd, Condition: cond}
}

// DeleteOp removes the row addressed by key
func DeleteOp(key models.QueryConfig, cond *Condition) TransactOp {
	return TransactOp{Kind: OpDelete, TableName: key.TableName, Key: key, Condition: cond}
}

// CheckOp asserts cond on the row addressed by key without writing it
func CheckOp(key models.QueryConfig, cond Condition) TransactOp {
	return TransactOp{Kind: OpCheck, TableName: key.TableName, Key: key, Condition: &cond}
}

// Cond returns a pointer to c, for the optional condition arguments
func Cond(c Condition) *Condition {
	return &c
}

// keyAttribute converts a key config into its attribute map
func keyAttribute(cfg models.QueryConfig) map[string]types.AttributeValue {
	var av types.AttributeValue
	switch cfg.KeyType {
	case models.NumberType:
		av = &types.AttributeValueMemberN{Value: cfg.KeyValue}
	case models.BinaryType:
		av = &types.AttributeValueMemberB{Value: []byte(cfg.KeyValue)}
	default:
		av = &types.AttributeValueMemberS{Value: cfg.KeyValue}
	}
	return map[string]types.AttributeValue{cfg.KeyName: av}
}
