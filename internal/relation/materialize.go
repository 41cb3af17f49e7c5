package relation

import (
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/predicate"
)

// Records materializes the relation. The result is a fresh slice; the
// records themselves are the source's.
func (r *Relation) Records() ([]ir.Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	base := r.source.Records()
	matched := make([]ir.Record, 0, len(base))
	for _, rec := range base {
		ok, err := predicate.Test(r.where, rec)
		if err != nil {
			return nil, evaluationError(r.modelName(), err)
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	if err := order.Sort(matched, r.order); err != nil {
		return nil, evaluationError(r.modelName(), err)
	}

	window := r.paginate(matched)
	r.logger.Debug("materialized relation",
		"model", r.modelName(),
		"base", len(base),
		"matched", len(matched),
		"returned", len(window))
	return window, nil
}

// paginate drops the offset and takes the limit, clipped to bounds.
func (r *Relation) paginate(records []ir.Record) []ir.Record {
	start := 0
	if r.offset != nil {
		start = min(*r.offset, len(records))
	}
	end := len(records)
	if r.limit != nil {
		end = min(start+*r.limit, end)
	}
	return records[start:end]
}

// Each calls fn for each record in order until fn returns false.
func (r *Relation) Each(fn func(ir.Record) bool) error {
	records, err := r.Records()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if !fn(rec) {
			return nil
		}
	}
	return nil
}

// Count returns the number of records the relation yields.
func (r *Relation) Count() (int, error) {
	records, err := r.Records()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// IsEmpty reports whether the relation yields no records.
func (r *Relation) IsEmpty() (bool, error) {
	n, err := r.Count()
	return n == 0, err
}

// First returns the first record, or false when there is none.
func (r *Relation) First() (ir.Record, bool, error) {
	records, err := r.Records()
	if err != nil || len(records) == 0 {
		return nil, false, err
	}
	return records[0], true, nil
}

// Last returns the last record, or false when there is none.
func (r *Relation) Last() (ir.Record, bool, error) {
	records, err := r.Records()
	if err != nil || len(records) == 0 {
		return nil, false, err
	}
	return records[len(records)-1], true, nil
}

// Include reports whether rec is among the records the relation yields.
// Records implementing ir.Equaler decide identity themselves; otherwise two
// records are the same when their primary keys are equal.
func (r *Relation) Include(rec ir.Record) (bool, error) {
	records, err := r.Records()
	if err != nil {
		return false, err
	}
	key := primaryKey(r.model)
	for _, candidate := range records {
		same, err := sameRecord(key, candidate, rec)
		if err != nil {
			return false, evaluationError(r.modelName(), err)
		}
		if same {
			return true, nil
		}
	}
	return false, nil
}

func sameRecord(key string, a, b ir.Record) (bool, error) {
	if eq, ok := a.(ir.Equaler); ok {
		return eq.Equal(b), nil
	}
	av, err := ir.Get(a, key)
	if err != nil {
		return false, err
	}
	bv, err := ir.Get(b, key)
	if err != nil {
		return false, err
	}
	return ir.Equal(av, bv), nil
}

// Find returns the record whose primary key equals id among the records
// the relation yields. No match is a RECORD_NOT_FOUND error.
func (r *Relation) Find(id ir.IRValue) (ir.Record, error) {
	records, err := r.Records()
	if err != nil {
		return nil, err
	}
	key := primaryKey(r.model)
	for _, rec := range records {
		v, err := ir.Get(rec, key)
		if err != nil {
			return nil, evaluationError(r.modelName(), err)
		}
		if ir.Equal(v, id) {
			return rec, nil
		}
	}
	return nil, NewRecordNotFoundError(r.modelName(), key, id)
}

// FindBy returns the first record matching criteria, or false when there
// is none. No match is not an error.
func (r *Relation) FindBy(c Criteria) (ir.Record, bool, error) {
	return r.Where(c).First()
}
