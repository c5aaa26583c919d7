package analytics

import (
	"fmt"
	"strings"
)

// SchemaError reports the required fields or columns a holdings table is
// missing. It is returned before any computation; no partial output is
// produced alongside it.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("holdings table is missing required fields: %s", strings.Join(e.Missing, ", "))
}
