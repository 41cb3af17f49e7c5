package relation

import (
	"context"
	"fmt"

	"github.com/roach88/relq/internal/ir"
)

// Responds reports whether Call would answer op.
func (r *Relation) Responds(op string) bool {
	if _, _, ok := r.extension(op); ok {
		return true
	}
	if r.model == nil {
		return false
	}
	_, ok := r.model.Query(op)
	return ok
}

// Call runs operation op.
//
// Resolution order:
//  1. the most recently added extension declaring op, called with the
//     materialized records;
//  2. the model's named query op, evaluated with r installed as the
//     model's ambient scope;
//  3. otherwise an UNKNOWN_OPERATION error.
func (r *Relation) Call(ctx context.Context, op string, args ...ir.IRValue) (any, error) {
	if r.err != nil {
		return nil, r.err
	}

	if ext, fn, ok := r.extension(op); ok {
		records, err := r.Records()
		if err != nil {
			return nil, err
		}
		r.logger.Debug("calling extension", "model", r.modelName(), "extension", ext.Name, "op", op)
		return fn(ctx, records, args...)
	}

	if r.model != nil {
		if q, ok := r.model.Query(op); ok {
			r.logger.Debug("forwarding to named query", "model", r.modelName(), "op", op)
			var out *Relation
			err := Scoping(ctx, r, func(ctx context.Context) error {
				var err error
				out, err = q(ctx, args...)
				return err
			})
			if err != nil {
				return nil, err
			}
			return out, nil
		}
	}

	return nil, &Error{
		Code:    ErrCodeUnknownOperation,
		Message: fmt.Sprintf("undefined operation %q", op),
		Model:   r.modelName(),
	}
}

// Scope runs op like Call and requires the result to be a relation.
func (r *Relation) Scope(ctx context.Context, op string, args ...ir.IRValue) (*Relation, error) {
	v, err := r.Call(ctx, op, args...)
	if err != nil {
		return nil, err
	}
	rel, ok := v.(*Relation)
	if !ok || rel == nil {
		return nil, invalidArgument(r.modelName(), "operation %q returned %T, not a relation", op, v)
	}
	return rel, nil
}
