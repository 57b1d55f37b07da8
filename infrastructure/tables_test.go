package infrastructure

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTablesKeepsPrefixedName(t *testing.T) {
	input, err := GetTables("dev_usuario_badges")

	require.NoError(t, err)
	assert.Equal(t, "dev_usuario_badges", aws.ToString(input.TableName))
	require.Len(t, input.KeySchema, 1)
	assert.Equal(t, "pk", aws.ToString(input.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, input.KeySchema[0].KeyType)
	require.Len(t, input.GlobalSecondaryIndexes, 1)
	assert.Equal(t, "usuarioId-index", aws.ToString(input.GlobalSecondaryIndexes[0].IndexName))
}

func TestGetTablesUnknown(t *testing.T) {
	_, err := GetTables("dev_nope")
	assert.Error(t, err)
}

func TestExtractBaseTableName(t *testing.T) {
	assert.Equal(t, "users", extractBaseTableName("dev_users"))
	assert.Equal(t, "financial_reports", extractBaseTableName("prod_financial_reports"))
	assert.Equal(t, "users", extractBaseTableName("users"))
}

func TestBaseTableNames(t *testing.T) {
	names := BaseTableNames()
	assert.Contains(t, names, "opportunities")
	assert.Contains(t, names, "constraints")
	assert.Contains(t, names, "counters")
	assert.IsIncreasing(t, names)
}

func TestHashKeys(t *testing.T) {
	keys := HashKeys("test")
	assert.Equal(t, "id", keys["test_users"])
	assert.Equal(t, "pk", keys["test_constraints"])
	assert.Equal(t, "name", keys["test_counters"])
	assert.Equal(t, "id", keys["test_conversations"])
	assert.Len(t, keys, len(BaseTableNames()))
}

func TestEveryGSIAttributeIsDefined(t *testing.T) {
	for _, name := range BaseTableNames() {
		input, err := GetTables("x_" + name)
		require.NoError(t, err, name)

		defined := map[string]bool{}
		for _, a := range input.AttributeDefinitions {
			defined[aws.ToString(a.AttributeName)] = true
		}
		for _, gsi := range input.GlobalSecondaryIndexes {
			for _, k := range gsi.KeySchema {
				assert.True(t, defined[aws.ToString(k.AttributeName)], "%s/%s", name, aws.ToString(gsi.IndexName))
			}
		}
	}
}
