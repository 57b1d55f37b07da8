package models

import "strconv"

// AttributeType enum for different DynamoDB attribute types
type AttributeType int

const (
	StringType AttributeType = iota
	NumberType
	BinaryType
)

// QueryConfig holds all the configuration for any DynamoDB query
type QueryConfig struct {
	TableName string
	IndexName string // empty for primary key queries
	KeyName   string
	KeyValue  string
	KeyType   AttributeType // For different data types
}

// IDKey addresses a row by its numeric "id" primary key
func IDKey(table string, id int64) QueryConfig {
	return QueryConfig{TableName: table, KeyName: "id", KeyValue: strconv.FormatInt(id, 10), KeyType: NumberType}
}

// StringKey addresses a row by a string primary key
func StringKey(table, keyName, value string) QueryConfig {
	return QueryConfig{TableName: table, KeyName: keyName, KeyValue: value, KeyType: StringType}
}

// NumberIndex queries a GSI whose hash key is numeric
func NumberIndex(table, index, keyName string, value int64) QueryConfig {
	return QueryConfig{TableName: table, IndexName: index, KeyName: keyName, KeyValue: strconv.FormatInt(value, 10), KeyType: NumberType}
}

// StringIndex queries a GSI whose hash key is a string
func StringIndex(table, index, keyName, value string) QueryConfig {
	return QueryConfig{TableName: table, IndexName: index, KeyName: keyName, KeyValue: value, KeyType: StringType}
}
