// Package memberkit resolves struct fields and methods by name,
// with reading, writing and invocation support.
//
// Member resolution is table driven: the member index of a type is built once
// and cached, so repeated by-name lookups avoid re-scanning the type.
// Name matching prefers an exact match; without one, a unique case-insensitive
// match is accepted, and multiple case-insensitive matches are reported as an
// ambiguity error.
package memberkit

import (
	"reflect"
	"strings"
	"sync"

	"go.llib.dev/subjectkit/pkg/errorkit"
)

const (
	// ErrMemberNotFound is returned when no field or method matches the requested name.
	ErrMemberNotFound errorkit.Error = "member not found"
	// ErrAmbiguousMember is returned when the requested name matches more than one member.
	ErrAmbiguousMember errorkit.Error = "ambiguous member name"
	// ErrNotAssignable is returned when a value cannot be used for the requested member or parameter.
	ErrNotAssignable errorkit.Error = "value is not assignable"
	// ErrInvalidTarget is returned when the receiver value itself is unfit for the requested operation.
	ErrInvalidTarget errorkit.Error = "invalid target value"
)

// Table is the member index of a concrete type.
type Table struct {
	// Type is the base struct type the table was built for.
	Type reflect.Type
	// PtrType is the pointer type whose method set the table indexes.
	PtrType reflect.Type

	fields  map[string][]int // case-folded field name -> field indexes
	methods map[string][]int // case-folded method name -> method indexes on PtrType
}

var (
	tablesMutex sync.RWMutex
	tables      = make(map[reflect.Type]*Table)
)

// TableFor returns the member index of the given type.
// Pointer types are normalised to their base type before indexing.
// Tables are built once per type and then reused.
func TableFor(typ reflect.Type) *Table {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	tablesMutex.RLock()
	tbl, ok := tables[typ]
	tablesMutex.RUnlock()
	if ok {
		return tbl
	}
	tbl = buildTable(typ)
	tablesMutex.Lock()
	tables[typ] = tbl
	tablesMutex.Unlock()
	return tbl
}

// TableOf returns the member index for the type of the given value.
func TableOf(v any) *Table {
	return TableFor(reflect.TypeOf(v))
}

func buildTable(typ reflect.Type) *Table {
	tbl := &Table{
		Type:    typ,
		PtrType: reflect.PtrTo(typ),
		fields:  make(map[string][]int),
		methods: make(map[string][]int),
	}
	if typ.Kind() == reflect.Struct {
		for i := 0; i < typ.NumField(); i++ {
			key := fold(typ.Field(i).Name)
			tbl.fields[key] = append(tbl.fields[key], i)
		}
	}
	for i := 0; i < tbl.PtrType.NumMethod(); i++ {
		key := fold(tbl.PtrType.Method(i).Name)
		tbl.methods[key] = append(tbl.methods[key], i)
	}
	return tbl
}

func fold(name string) string { return strings.ToLower(name) }

// LookupField resolves exactly one struct field by name.
func (tbl *Table) LookupField(name string) (reflect.StructField, error) {
	candidates := tbl.fields[fold(name)]
	for _, i := range candidates {
		if sf := tbl.Type.Field(i); sf.Name == name {
			return sf, nil
		}
	}
	switch len(candidates) {
	case 0:
		return reflect.StructField{}, ErrMemberNotFound.F("field %q on %s", name, tbl.Type.String())
	case 1:
		return tbl.Type.Field(candidates[0]), nil
	default:
		return reflect.StructField{}, ErrAmbiguousMember.F("field %q on %s matches %d fields", name, tbl.Type.String(), len(candidates))
	}
}

// LookupMethod resolves exactly one method by name from the pointer type's method set.
func (tbl *Table) LookupMethod(name string) (reflect.Method, error) {
	candidates := tbl.methods[fold(name)]
	for _, i := range candidates {
		if m := tbl.PtrType.Method(i); m.Name == name {
			return m, nil
		}
	}
	switch len(candidates) {
	case 0:
		return reflect.Method{}, ErrMemberNotFound.F("method %q on %s", name, tbl.PtrType.String())
	case 1:
		return tbl.PtrType.Method(candidates[0]), nil
	default:
		return reflect.Method{}, ErrAmbiguousMember.F("method %q on %s matches %d methods", name, tbl.PtrType.String(), len(candidates))
	}
}
