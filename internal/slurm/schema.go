package slurm

// schema.go: per-field classification read from struct tags.
//
// Every record is a struct whose wire fields carry a `slurm` tag:
//
//	Account string `slurm:"account,primarykey"`
//
// The first tag element is the internal (snake_case) field name, the rest are
// classes: readonly, writeonly, synthetic, primarykey. synthetic and
// primarykey imply readonly. Wire fields must be strings; synthetic fields
// may have any type and never reach the tools.

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Class is a bit set of field classifications.
type Class uint8

const (
	ReadOnly Class = 1 << iota
	WriteOnly
	Synthetic
	PrimaryKey
)

// Has reports whether all bits of c2 are set in c.
func (c Class) Has(c2 Class) bool { return c&c2 == c2 }

// Field describes one classified struct field.
type Field struct {
	Name  string
	Class Class
	index []int
}

// Schema is the classification table of a record type. It is built once per
// type and never modified afterwards.
type Schema struct {
	Type   reflect.Type
	Fields []Field

	byName      map[string]int
	primaryKeys []string
	readOnly    []string
	writeOnly   []string
	synthetic   []string
}

// PrimaryKeys returns the primary key field names in declaration order.
func (s *Schema) PrimaryKeys() []string { return s.primaryKeys }

// ReadOnly returns the read-only field names, primary keys and synthetic
// fields included.
func (s *Schema) ReadOnly() []string { return s.readOnly }

// WriteOnly returns the fields that are sent to the tools but never read.
func (s *Schema) WriteOnly() []string { return s.writeOnly }

// Synthetic returns the in-memory only fields.
func (s *Schema) Synthetic() []string { return s.synthetic }

// QueryFields returns the names requested from a tool on reads: every field
// that is neither synthetic nor write-only.
func (s *Schema) QueryFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Class&(Synthetic|WriteOnly) != 0 {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// Lookup returns the field named name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

var schemas sync.Map // reflect.Type -> *Schema

// Register builds and caches the schema of the struct type T. Registering a
// type twice returns the cached schema.
func Register[T any]() (*Schema, error) {
	return schemaOf(reflect.TypeFor[T]())
}

// MustRegister is Register for package level variables: a malformed schema
// panics during initialisation.
func MustRegister[T any]() *Schema {
	s, err := Register[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func schemaOf(t reflect.Type) (*Schema, error) {
	if cached, ok := schemas.Load(t); ok {
		return cached.(*Schema), nil
	}
	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}
	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

func buildSchema(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema %s: not a struct", t)
	}
	s := &Schema{Type: t, byName: map[string]int{}}
	for _, sf := range reflect.VisibleFields(t) {
		tag, ok := sf.Tag.Lookup("slurm")
		if !ok || tag == "-" || sf.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			return nil, fmt.Errorf("schema %s: field %s has an empty name", t, sf.Name)
		}
		var class Class
		if opts != "" {
			for _, opt := range strings.Split(opts, ",") {
				switch opt {
				case "readonly":
					class |= ReadOnly
				case "writeonly":
					class |= WriteOnly
				case "synthetic":
					class |= Synthetic | ReadOnly
				case "primarykey":
					class |= PrimaryKey | ReadOnly
				default:
					return nil, fmt.Errorf("schema %s: field %s: unknown class %q", t, sf.Name, opt)
				}
			}
		}
		if class.Has(WriteOnly) && class.Has(ReadOnly) {
			return nil, fmt.Errorf("schema %s: field %s is both read-only and write-only", t, sf.Name)
		}
		if !class.Has(Synthetic) && sf.Type.Kind() != reflect.String {
			return nil, fmt.Errorf("schema %s: wire field %s must be a string, is %s", t, sf.Name, sf.Type)
		}
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field name %q", t, name)
		}

		s.byName[name] = len(s.Fields)
		s.Fields = append(s.Fields, Field{Name: name, Class: class, index: slices.Clone(sf.Index)})
		if class.Has(PrimaryKey) {
			s.primaryKeys = append(s.primaryKeys, name)
		}
		if class.Has(ReadOnly) {
			s.readOnly = append(s.readOnly, name)
		}
		if class.Has(WriteOnly) {
			s.writeOnly = append(s.writeOnly, name)
		}
		if class.Has(Synthetic) {
			s.synthetic = append(s.synthetic, name)
		}
	}
	if len(s.primaryKeys) == 0 {
		return nil, fmt.Errorf("schema %s: no primary key field", t)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Record access
// ---------------------------------------------------------------------------

func (s *Schema) value(rec any) reflect.Value {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Pointer || v.Elem().Type() != s.Type {
		panic(fmt.Sprintf("slurm: schema %s used with %T", s.Type, rec))
	}
	return v.Elem()
}

// Get returns the wire value of field name on rec, a pointer to the
// schema's struct type.
func (s *Schema) Get(rec any, name string) string {
	f, ok := s.Lookup(name)
	if !ok || f.Class.Has(Synthetic) {
		return ""
	}
	return s.value(rec).FieldByIndex(f.index).String()
}

// Decode fills every non-synthetic field of rec from values. Fields missing
// from values are cleared.
func (s *Schema) Decode(rec any, values Fields) {
	v := s.value(rec)
	for _, f := range s.Fields {
		if f.Class.Has(Synthetic) {
			continue
		}
		v.FieldByIndex(f.index).SetString(values[f.Name])
	}
}

// encode returns all non-synthetic fields of rec that hold a value.
func (s *Schema) encode(rec any) Fields {
	v := s.value(rec)
	out := Fields{}
	for _, f := range s.Fields {
		if f.Class.Has(Synthetic) {
			continue
		}
		if val := v.FieldByIndex(f.index).String(); val != "" {
			out[f.Name] = val
		}
	}
	return out
}

// Split divides rec into the filters that identify it (its primary keys)
// and the updates to send: writable fields that hold a value. Read-only
// and synthetic fields never become updates.
func (s *Schema) Split(rec any) (updates, filters Fields) {
	v := s.value(rec)
	updates, filters = Fields{}, Fields{}
	for _, f := range s.Fields {
		if f.Class.Has(Synthetic) {
			continue
		}
		val := v.FieldByIndex(f.index).String()
		switch {
		case f.Class.Has(PrimaryKey):
			filters[f.Name] = val
		case f.Class.Has(ReadOnly):
		case val != "":
			updates[f.Name] = val
		}
	}
	return updates, filters
}

// CopyWire overwrites every non-synthetic field of dst with the one of src.
func (s *Schema) CopyWire(dst, src any) {
	s.Decode(dst, s.encode(src))
}
