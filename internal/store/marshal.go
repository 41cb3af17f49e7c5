package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/relq/internal/ir"
)

// Objecter is implemented by records that are not ir.IRObject but can
// present themselves as one for storage.
type Objecter interface {
	Object() ir.IRObject
}

// marshalRecord converts a record to canonical JSON TEXT for storage.
func marshalRecord(rec ir.Record) (string, error) {
	var obj ir.IRObject
	switch r := rec.(type) {
	case ir.IRObject:
		obj = r
	case Objecter:
		obj = r.Object()
	default:
		return "", fmt.Errorf("marshal record: %T cannot be stored (not an ir.IRObject)", rec)
	}

	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

// unmarshalRecord parses canonical JSON TEXT to an IRObject.
// Uses ir.IRObject.UnmarshalJSON which handles large integers via
// json.Number to avoid float64 precision loss.
func unmarshalRecord(data string) (ir.IRObject, error) {
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return obj, nil
}
