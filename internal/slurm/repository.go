package slurm

import (
	"context"
	"fmt"
)

// Record is implemented by pointers to record structs.
type Record interface {
	// ObjectType is the object name passed to the tool, e.g. "Account".
	ObjectType() string
	// QueryOptions are extra arguments for listings.
	QueryOptions() []string
}

// Writable marks records the accounting tool can create, modify and delete.
type Writable interface {
	Record
	writable()
}

// recordPtr constrains P to be *T implementing Record.
type recordPtr[T any] interface {
	*T
	Record
}

type writablePtr[T any] interface {
	*T
	Writable
}

// ---------------------------------------------------------------------------
// Read access
// ---------------------------------------------------------------------------

// Repository queries accounting records of type T.
type Repository[T any, P recordPtr[T]] struct {
	manager *AccountManager
	schema  *Schema
	decode  func(rows []Fields) ([]P, error)
	prepare func(P)
}

func newRepository[T any, P recordPtr[T]](manager *AccountManager, decode func([]Fields) ([]P, error)) *Repository[T, P] {
	r := &Repository[T, P]{manager: manager, schema: MustRegister[T](), decode: decode}
	if r.decode == nil {
		r.decode = r.decodeFlat
	}
	return r
}

// Schema returns the field classification of T.
func (r *Repository[T, P]) Schema() *Schema { return r.schema }

func (r *Repository[T, P]) decodeFlat(rows []Fields) ([]P, error) {
	out := make([]P, 0, len(rows))
	for _, row := range rows {
		p := P(new(T))
		r.schema.Decode(p, row)
		out = append(out, p)
	}
	return out, nil
}

// decodeEntries builds the hierarchy from rows and keeps the entries whose
// type is T: a listing of one kind may contain rows of its sibling.
func decodeEntries[T any, P recordPtr[T]](rows []Fields) ([]P, error) {
	entries, err := BuildHierarchy(rows)
	if err != nil {
		return nil, err
	}
	var out []P
	for _, e := range entries {
		if p, ok := e.(P); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repository[T, P]) objectType() string {
	return P(new(T)).ObjectType()
}

// Filter returns the records matching criteria, keyed by internal field
// name.
func (r *Repository[T, P]) Filter(ctx context.Context, criteria Fields) ([]P, error) {
	zero := P(new(T))
	rows, err := r.manager.Show(ctx, zero.ObjectType(), zero.QueryOptions(), r.schema.QueryFields(), criteria)
	if err != nil {
		return nil, err
	}
	records, err := r.decode(rows)
	if err != nil {
		return nil, err
	}
	if r.prepare != nil {
		for _, rec := range records {
			r.prepare(rec)
		}
	}
	return records, nil
}

// All returns every record.
func (r *Repository[T, P]) All(ctx context.Context) ([]P, error) {
	return r.Filter(ctx, nil)
}

// Get returns the single record matching criteria. It fails with
// *NotFoundError or *MultipleResultsError otherwise.
func (r *Repository[T, P]) Get(ctx context.Context, criteria Fields) (P, error) {
	records, err := r.Filter(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return single(r.objectType(), criteria, records)
}

// Refresh reloads rec by its primary key and overwrites its wire fields.
// Synthetic fields such as the tree links are left alone.
func (r *Repository[T, P]) Refresh(ctx context.Context, rec P) error {
	_, filters := r.schema.Split(rec)
	fresh, err := r.Get(ctx, filters)
	if err != nil {
		return err
	}
	r.schema.CopyWire(rec, fresh)
	return nil
}

func single[P any](objectType string, criteria Fields, records []P) (P, error) {
	var zero P
	switch len(records) {
	case 0:
		return zero, &NotFoundError{ObjectType: objectType, Filters: criteria}
	case 1:
		return records[0], nil
	default:
		return zero, &MultipleResultsError{ObjectType: objectType, Filters: criteria, Count: len(records)}
	}
}

// ---------------------------------------------------------------------------
// Write access
// ---------------------------------------------------------------------------

// WritableRepository adds mutations to a Repository.
type WritableRepository[T any, P writablePtr[T]] struct {
	*Repository[T, P]
}

// Create adds a record with attrs and returns it as the tool stores it.
// When the tool reports that nothing was added, Create fails with
// *CreateError.
func (r *WritableRepository[T, P]) Create(ctx context.Context, attrs Fields) (P, error) {
	objectType := r.objectType()
	created, err := r.manager.Write(ctx, "create", objectType, attrs, nil)
	if err != nil {
		return nil, err
	}
	if len(created) != 1 {
		return nil, &CreateError{ObjectType: objectType, Attributes: attrs}
	}
	return r.Get(ctx, r.queryable(attrs))
}

// queryable drops write-only attributes, which the tool cannot filter on.
func (r *WritableRepository[T, P]) queryable(attrs Fields) Fields {
	out := Fields{}
	for k, v := range attrs {
		if f, ok := r.schema.Lookup(k); ok && f.Class.Has(WriteOnly) {
			continue
		}
		out[k] = v
	}
	return out
}

// Save writes the writable fields of rec, keyed by its primary key. A
// record the tool does not know yet is created from the same fields. Save
// reports whether a record was created and finishes by refreshing rec.
//
// Affecting more than one record is an ErrInvariantViolation unless
// AllowMultiple is given.
func (r *WritableRepository[T, P]) Save(ctx context.Context, rec P, opts ...WriteOption) (bool, error) {
	o := writeOptions(opts)
	objectType := r.objectType()
	updates, filters := r.schema.Split(rec)

	modified, err := r.manager.Write(ctx, "modify", objectType, updates, filters, opts...)
	if err != nil {
		return false, err
	}

	created := false
	switch {
	case len(modified) == 0:
		attrs := updates.Merge(filters)
		added, err := r.manager.Write(ctx, "create", objectType, attrs, nil, opts...)
		if err != nil {
			return false, err
		}
		if len(added) != 1 {
			return false, &CreateError{ObjectType: objectType, Attributes: attrs}
		}
		created = true
	case len(modified) > 1 && !o.allowMultiple:
		return false, fmt.Errorf("%w: modified %d %s records %v, expected one",
			ErrInvariantViolation, len(modified), objectType, modified)
	}

	return created, r.Refresh(ctx, rec)
}

// Delete removes rec and reports whether the tool deleted it. The
// in-memory value is stale afterwards.
func (r *WritableRepository[T, P]) Delete(ctx context.Context, rec P, opts ...WriteOption) (bool, error) {
	o := writeOptions(opts)
	objectType := r.objectType()
	_, filters := r.schema.Split(rec)

	deleted, err := r.manager.Write(ctx, "delete", objectType, nil, filters, opts...)
	if err != nil {
		return false, err
	}
	if len(deleted) > 1 && !o.allowMultiple {
		return false, fmt.Errorf("%w: deleted %d %s records %v, expected one",
			ErrInvariantViolation, len(deleted), objectType, deleted)
	}
	return len(deleted) == 1, nil
}
