// Package loader reads invoice datasets from disk.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/askledger/askledger/internal/domain"
)

// Invoices reads a JSON file holding an array of invoice objects.
// Field coercion happens later, at store construction; the loader only
// enforces the container shape.
func Invoices(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read invoices file: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invoices file must be a JSON array of objects: %v: %w",
			err, domain.ErrInvalidArgument)
	}
	return records, nil
}
