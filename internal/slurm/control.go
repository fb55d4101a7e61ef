package slurm

import (
	"context"
	"fmt"
)

// ControlRepository queries and updates live records of type T through the
// control tool. Those records are addressed by a single primary key.
type ControlRepository[T any, P recordPtr[T]] struct {
	controller *Controller
	schema     *Schema
	key        string
}

func newControlRepository[T any, P recordPtr[T]](controller *Controller) *ControlRepository[T, P] {
	schema := MustRegister[T]()
	if len(schema.PrimaryKeys()) != 1 {
		panic(fmt.Sprintf("slurm: %s must define exactly one primary key", schema.Type))
	}
	return &ControlRepository[T, P]{controller: controller, schema: schema, key: schema.PrimaryKeys()[0]}
}

// Schema returns the field classification of T.
func (r *ControlRepository[T, P]) Schema() *Schema { return r.schema }

// Filter returns the records matching criteria. The control tool can only
// select by primary key, so any other criterion is a *ValidationError.
func (r *ControlRepository[T, P]) Filter(ctx context.Context, criteria Fields) ([]P, error) {
	for k := range criteria {
		if k != r.key {
			return nil, &ValidationError{
				Field:  k,
				Reason: fmt.Sprintf("%s only supports filtering by %s", r.schema.Type.Name(), r.key),
			}
		}
	}
	zero := P(new(T))
	rows, err := r.controller.Show(ctx, zero.ObjectType(), criteria[r.key], zero.QueryOptions(), r.schema.QueryFields())
	if err != nil {
		return nil, err
	}
	out := make([]P, 0, len(rows))
	for _, row := range rows {
		p := P(new(T))
		r.schema.Decode(p, row)
		out = append(out, p)
	}
	return out, nil
}

// All returns every record.
func (r *ControlRepository[T, P]) All(ctx context.Context) ([]P, error) {
	return r.Filter(ctx, nil)
}

// Get returns the record whose primary key is id.
func (r *ControlRepository[T, P]) Get(ctx context.Context, id string) (P, error) {
	criteria := Fields{r.key: id}
	records, err := r.Filter(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return single(P(new(T)).ObjectType(), criteria, records)
}

// Refresh reloads rec and overwrites its wire fields.
func (r *ControlRepository[T, P]) Refresh(ctx context.Context, rec P) error {
	fresh, err := r.Get(ctx, r.schema.Get(rec, r.key))
	if err != nil {
		return err
	}
	r.schema.CopyWire(rec, fresh)
	return nil
}

// Save sends the writable fields of rec and refreshes it.
func (r *ControlRepository[T, P]) Save(ctx context.Context, rec P) error {
	updates, filters := r.schema.Split(rec)
	if err := r.controller.Update(ctx, rec.ObjectType(), filters[r.key], updates); err != nil {
		return err
	}
	return r.Refresh(ctx, rec)
}

// update sends updates for the record with primary key id.
func (r *ControlRepository[T, P]) update(ctx context.Context, id string, updates Fields) error {
	return r.controller.Update(ctx, P(new(T)).ObjectType(), id, updates)
}
