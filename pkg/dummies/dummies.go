// Package dummies generates realistic but arbitrary values for a requested type.
//
// It is used to satisfy constructor parameters and struct fields
// that are not relevant for the given test case.
// Generated values have a deterministic shape (non-nil containers, populated
// struct graphs) while their content is randomized.
package dummies

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Pallinder/go-randomdata"
	uuid "github.com/satori/go.uuid"

	"go.llib.dev/subjectkit/pkg/errorkit"
	"go.llib.dev/testcase/random"
)

const ErrNotSupported errorkit.Error = "dummy value generation is not supported for the requested type"

// Generator produces dummy values.
// The zero value is not usable; create instances with NewGenerator.
type Generator struct {
	// Random is the seeded randomness source behind the generated content.
	Random *random.Random

	mutex  sync.Mutex
	custom map[reflect.Type]func() reflect.Value
}

func NewGenerator() *Generator {
	return &Generator{Random: random.New(random.CryptoSeed{})}
}

// Register adds a custom generator function for T on the given Generator.
// Custom generators take precedence over the built-in kind based generation.
func Register[T any](g *Generator, mk func() T) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.custom == nil {
		g.custom = make(map[reflect.Type]func() reflect.Value)
	}
	g.custom[reflect.TypeOf((*T)(nil)).Elem()] = func() reflect.Value {
		return reflect.ValueOf(mk())
	}
}

// Make returns a dummy value for the type given as type argument.
func Make[T any](g *Generator) (T, error) {
	rv, err := g.MakeValue(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return *new(T), err
	}
	return rv.Interface().(T), nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	stringType   = reflect.TypeOf("")
)

// MakeValue returns a dummy value for the requested type.
//
// Func types, unsupported interface types and unsafe pointers yield
// ErrNotSupported; everything else is generated, recursively for
// struct graphs.
func (g *Generator) MakeValue(typ reflect.Type) (reflect.Value, error) {
	if typ == nil {
		return reflect.Value{}, ErrNotSupported.F("<nil> type")
	}
	if mk, ok := g.lookupCustom(typ); ok {
		return mk(), nil
	}
	switch typ {
	case timeType:
		return reflect.ValueOf(g.Random.Time()), nil
	case durationType:
		return reflect.ValueOf(time.Duration(g.Random.Int())), nil
	case uuidType:
		return reflect.ValueOf(uuid.NewV4()), nil
	}
	switch typ.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(g.Random.Bool()).Convert(typ), nil

	case reflect.String:
		return reflect.ValueOf(g.makeString("")).Convert(typ), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(int64(g.Random.Int())).Convert(typ), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(uint64(g.Random.Int())).Convert(typ), nil

	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(g.Random.Float64()).Convert(typ), nil

	case reflect.Complex64, reflect.Complex128:
		return reflect.ValueOf(complex(g.Random.Float64(), g.Random.Float64())).Convert(typ), nil

	case reflect.Slice:
		return reflect.MakeSlice(typ, 0, 0), nil

	case reflect.Map:
		return reflect.MakeMap(typ), nil

	case reflect.Chan:
		return reflect.MakeChan(typ, 0), nil

	case reflect.Array:
		arr := reflect.New(typ).Elem()
		for i := 0; i < typ.Len(); i++ {
			ev, err := g.MakeValue(typ.Elem())
			if err != nil {
				break // leave the remaining elements at their zero value
			}
			arr.Index(i).Set(ev)
		}
		return arr, nil

	case reflect.Ptr:
		return reflect.New(typ.Elem()), nil

	case reflect.Struct:
		ptr := reflect.New(typ)
		g.populateStruct(ptr.Elem())
		return ptr.Elem(), nil

	case reflect.Interface:
		if typ == contextType {
			return reflect.ValueOf(context.Background()), nil
		}
		return reflect.Value{}, ErrNotSupported.F("interface type: %s", typ.String())

	default:
		// reflect.Func, reflect.UnsafePointer
		return reflect.Value{}, ErrNotSupported.F("%s", typ.String())
	}
}

func (g *Generator) lookupCustom(typ reflect.Type) (func() reflect.Value, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	mk, ok := g.custom[typ]
	return mk, ok
}

func (g *Generator) populateStruct(sv reflect.Value) {
	typ := sv.Type()
	for i := 0; i < typ.NumField(); i++ {
		fv := sv.Field(i)
		if !fv.CanSet() {
			continue
		}
		sf := typ.Field(i)
		if sf.Type == stringType {
			fv.SetString(g.makeString(sf.Name))
			continue
		}
		nv, err := g.MakeValue(sf.Type)
		if err != nil {
			continue // unsupported field types stay at their zero value
		}
		if !nv.Type().AssignableTo(sf.Type) {
			continue
		}
		fv.Set(nv)
	}
}

var randomdataMutex sync.Mutex

func (g *Generator) makeString(fieldName string) string {
	randomdataMutex.Lock()
	defer randomdataMutex.Unlock()
	name := strings.ToLower(fieldName)
	switch {
	case name == "id" || name == "uuid" || strings.HasSuffix(fieldName, "ID"):
		return uuid.NewV4().String()
	case strings.Contains(name, "email"):
		return randomdata.Email()
	default:
		return randomdata.SillyName()
	}
}
