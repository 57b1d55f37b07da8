package dal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrItemNotFound is returned by GetItem when no row matches the key
	ErrItemNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a condition expression evaluates to false
	ErrConditionFailed = errors.New("condition check failed")
	// ErrTableNotFound is returned when the target table does not exist
	ErrTableNotFound = errors.New("table not found")
)

const reasonConditionalCheckFailed = "ConditionalCheckFailed"

// TransactionCanceledError reports which operations of a transaction failed.
// Reasons holds one code per operation, "None" for those that passed.
type TransactionCanceledError struct {
	Reasons []string
}

func (e *TransactionCanceledError) Error() string {
	return "transaction canceled: [" + strings.Join(e.Reasons, ", ") + "]"
}

// Is makes errors.Is(err, ErrConditionFailed) true when any operation failed its condition
func (e *TransactionCanceledError) Is(target error) bool {
	return target == ErrConditionFailed && e.FailedIndex() >= 0
}

// FailedIndex returns the index of the first operation whose condition failed, or -1
func (e *TransactionCanceledError) FailedIndex() int {
	for i, r := range e.Reasons {
		if r == reasonConditionalCheckFailed {
			return i
		}
	}
	return -1
}

// FailedOperation returns the index of the first failed condition in err, or -1
func FailedOperation(err error) int {
	var tce *TransactionCanceledError
	if errors.As(err, &tce) {
		return tce.FailedIndex()
	}
	if errors.Is(err, ErrConditionFailed) {
		return 0
	}
	return -1
}

// translateError maps SDK errors onto the package sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%w: %w", ErrConditionFailed, err)
	}

	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		reasons := make([]string, len(tce.CancellationReasons))
		for i, r := range tce.CancellationReasons {
			reasons[i] = aws.ToString(r.Code)
		}
		return &TransactionCanceledError{Reasons: reasons}
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("dynamodb %s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
