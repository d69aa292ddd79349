package memberkit

import (
	"reflect"
	"unsafe"
)

// Get reads the named field's value from the given struct or struct pointer.
// Unexported fields are readable as well.
func Get(target any, name string) (any, error) {
	rv, err := baseStructOf(target)
	if err != nil {
		return nil, err
	}
	sf, err := TableFor(rv.Type()).LookupField(name)
	if err != nil {
		return nil, err
	}
	fv, ok := tryToMakeAccessible(rv.Field(sf.Index[0]))
	if !ok {
		return nil, ErrInvalidTarget.F("field %q of %s is not accessible", name, rv.Type().String())
	}
	return fv.Interface(), nil
}

// Set assigns the given value to the named field of the struct the pointer refers to.
// Unexported fields are settable as well.
func Set(target any, name string, value any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrInvalidTarget.F("non-nil struct pointer expected, got %T", target)
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrInvalidTarget.F("struct pointer expected, got %T", target)
	}
	sf, err := TableFor(elem.Type()).LookupField(name)
	if err != nil {
		return err
	}
	fv, ok := toSettable(elem.Field(sf.Index[0]))
	if !ok {
		return ErrInvalidTarget.F("field %q of %s is not settable", name, elem.Type().String())
	}
	av, err := Coerce(value, sf.Type)
	if err != nil {
		return err
	}
	fv.Set(av)
	return nil
}

func baseStructOf(target any) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, ErrInvalidTarget.F("nil pointer of %T", target)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget.F("struct or struct pointer expected, got %T", target)
	}
	return rv, nil
}

// Coerce validates assignability of a raw argument value for the given type
// and turns untyped nil into the zero value of nilable types.
func Coerce(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch typ.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
			return reflect.Zero(typ), nil
		default:
			return reflect.Value{}, ErrNotAssignable.F("<nil> is not assignable to %s", typ.String())
		}
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(typ) {
		return reflect.Value{}, ErrNotAssignable.F("%s is not assignable to %s", rv.Type().String(), typ.String())
	}
	return rv, nil
}

func toSettable(rv reflect.Value) (reflect.Value, bool) {
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	if rv.CanSet() {
		return rv, true
	}
	if rv.CanAddr() {
		if uv := reflect.NewAt(rv.Type(), rv.Addr().UnsafePointer()).Elem(); uv.CanInterface() {
			return uv, true
		}
	}
	return reflect.Value{}, false
}

func tryToMakeAccessible(rv reflect.Value) (reflect.Value, bool) {
	if rv.CanInterface() {
		return rv, true
	}
	if rv.CanAddr() {
		uv := reflect.NewAt(rv.Type(), unsafe.Pointer(rv.UnsafeAddr())).Elem()
		if uv.CanInterface() {
			return uv, true
		}
	}
	if rv.CanUint() {
		return reflect.ValueOf(rv.Uint()).Convert(rv.Type()), true
	}
	if rv.CanInt() {
		return reflect.ValueOf(rv.Int()).Convert(rv.Type()), true
	}
	if rv.CanFloat() {
		return reflect.ValueOf(rv.Float()).Convert(rv.Type()), true
	}
	if rv.CanComplex() {
		return reflect.ValueOf(rv.Complex()).Convert(rv.Type()), true
	}
	switch rv.Kind() {
	case reflect.String:
		return reflect.ValueOf(rv.String()).Convert(rv.Type()), true
	case reflect.Bool:
		return reflect.ValueOf(rv.Bool()).Convert(rv.Type()), true
	}
	return reflect.Value{}, false
}
