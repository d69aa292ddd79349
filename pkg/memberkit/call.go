package memberkit

import (
	"errors"
	"reflect"
)

// Call invokes the named method on the receiver with the given positional
// arguments, matched by assignability, and returns every result value.
//
// Value receivers are promoted to an addressable copy when the method belongs
// to the pointer type's method set; pass a pointer when the method is expected
// to mutate the receiver.
//
// A panic raised by the invoked method is not recovered.
func Call(receiver any, name string, args ...any) ([]any, error) {
	rv := reflect.ValueOf(receiver)
	if !rv.IsValid() {
		return nil, ErrInvalidTarget.F("<nil> receiver")
	}
	if rv.Kind() != reflect.Ptr {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		rv = ptr
	}
	m, err := TableFor(rv.Type()).LookupMethod(name)
	if err != nil {
		return nil, err
	}
	mv := rv.Method(m.Index)
	in, err := matchArguments(mv.Type(), name, args)
	if err != nil {
		return nil, err
	}
	outs := mv.Call(in)
	results := make([]any, 0, len(outs))
	for _, out := range outs {
		results = append(results, out.Interface())
	}
	return results, nil
}

// CallIgnoring invokes the named method like Call, but it interprets a
// trailing error result as the method's failure channel: a failure matching
// the ignorable sentinel is swallowed and no results are returned, any other
// failure is returned unchanged. On success, the results without the trailing
// nil error are returned.
func CallIgnoring(receiver any, name string, ignorable error, args ...any) ([]any, error) {
	if receiver == nil {
		return nil, ErrInvalidTarget.F("<nil> receiver")
	}
	m, err := TableFor(reflect.TypeOf(receiver)).LookupMethod(name)
	if err != nil {
		return nil, err
	}
	ft := m.Type
	hasErrOut := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
	results, err := Call(receiver, name, args...)
	if err != nil {
		return nil, err
	}
	if !hasErrOut {
		return results, nil
	}
	last := results[len(results)-1]
	if last == nil {
		return results[:len(results)-1], nil
	}
	failure := last.(error)
	if ignorable != nil && errors.Is(failure, ignorable) {
		return nil, nil
	}
	return nil, failure
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func matchArguments(ft reflect.Type, name string, args []any) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, ErrNotAssignable.F("method %q expects at least %d arguments, got %d", name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, ErrNotAssignable.F("method %q expects %d arguments, got %d", name, numIn, len(args))
	}
	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var paramType reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			paramType = ft.In(numIn - 1).Elem()
		} else {
			paramType = ft.In(i)
		}
		av, err := Coerce(arg, paramType)
		if err != nil {
			return nil, err
		}
		in = append(in, av)
	}
	return in, nil
}
