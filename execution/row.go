package execution

import (
	"fmt"
	"strings"

	"github.com/streamsql/streamsql"
)

// Row is one ordered list of column values flowing through a plan. A nil *Row
// is a tombstone and passes through sinks as a null-valued write.
type Row struct {
	Columns []streamsql.Value
}

func NewRow(columns []streamsql.Value) *Row {
	return &Row{Columns: columns}
}

func (r *Row) Copy() *Row {
	if r == nil {
		return nil
	}
	columns := make([]streamsql.Value, len(r.Columns))
	copy(columns, r.Columns)
	return &Row{Columns: columns}
}

func (r *Row) String() string {
	if r == nil {
		return "<tombstone>"
	}
	columns := make([]string, len(r.Columns))
	for i := range r.Columns {
		columns[i] = r.Columns[i].String()
	}
	return fmt.Sprintf("(%s)", strings.Join(columns, ", "))
}

// RowTransformationError wraps a whole-row failure outside the per-column
// recovery path. The runtime decides whether to retry or drop the row.
type RowTransformationError struct {
	Cause error
}

func NewRowTransformationError(cause error) *RowTransformationError {
	return &RowTransformationError{Cause: cause}
}

func (e *RowTransformationError) Error() string {
	return fmt.Sprintf("couldn't transform row: %s", e.Cause)
}

func (e *RowTransformationError) Unwrap() error {
	return e.Cause
}
