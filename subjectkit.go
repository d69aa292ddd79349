// Package subjectkit helps unit tests construct the instance they exercise.
//
// A Builder lazily materializes exactly one subject instance per test case.
// Constructor parameters resolve, in order, from explicit overrides,
// already registered mocks, auto-created mocks for dependency abstractions,
// and generated dummy values for everything else.
// The builder is rebuilt only at teardown or at an explicit Reset,
// so repeated access within one test returns the same instance.
package subjectkit

import (
	"reflect"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"

	"go.llib.dev/subjectkit/pkg/dummies"
	"go.llib.dev/subjectkit/pkg/errorkit"
	"go.llib.dev/subjectkit/pkg/memberkit"
	"go.llib.dev/subjectkit/pkg/teardown"
)

// Builder materializes the subject of a test case.
//
// Each test case owns its own Builder; a Builder instance is not meant
// to be shared between tests.
type Builder[T any] struct {
	tb testing.TB

	// Dummies supplies generated values for constructor parameters
	// that are neither overridden nor dependency abstractions.
	Dummies *dummies.Generator

	constructors []any
	factories    map[reflect.Type]MockFactory

	mutex     sync.Mutex
	mocks     map[reflect.Type]any
	overrides []any
	buildArgs []any
	subject   T
	built     bool
	ctrl      *gomock.Controller
	provider  *ServiceProviderDouble
	td        teardown.Teardown
}

// Option configures a Builder during New.
type Option[T any] interface{ configure(b *Builder[T]) }

type optionFunc[T any] func(b *Builder[T])

func (fn optionFunc[T]) configure(b *Builder[T]) { fn(b) }

// WithConstructor registers candidate constructor functions for the subject.
// The constructor with the most parameters wins the selection;
// two candidates sharing the highest parameter count is a configuration error.
func WithConstructor[T any](constructors ...any) Option[T] {
	return optionFunc[T](func(b *Builder[T]) {
		b.constructors = append(b.constructors, constructors...)
	})
}

// WithDummies replaces the builder's dummy value generator.
func WithDummies[T any](g *dummies.Generator) Option[T] {
	return optionFunc[T](func(b *Builder[T]) { b.Dummies = g })
}

// New creates a Builder bound to the given test.
// The builder resets itself through the test's cleanup hook,
// so the next test starts with a clean state.
func New[T any](tb testing.TB, opts ...Option[T]) *Builder[T] {
	tb.Helper()
	b := &Builder[T]{
		tb:        tb,
		Dummies:   dummies.NewGenerator(),
		factories: make(map[reflect.Type]MockFactory),
		mocks:     make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt.configure(b)
	}
	tb.Cleanup(func() {
		if err := b.Reset(); err != nil {
			tb.Error(err)
		}
	})
	return b
}

// Subject returns the memoized subject instance,
// building it on first access.
// Any build failure fails the bound test immediately.
func (b *Builder[T]) Subject() T {
	b.tb.Helper()
	subject, err := b.Build()
	if err != nil {
		b.tb.Fatal(err.Error())
	}
	return subject
}

// Build returns the memoized subject instance, constructing it on first call.
func (b *Builder[T]) Build() (T, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.build()
}

// OverrideArgs appends explicit values to use for the subject's constructor
// parameters, positionally from the first parameter.
// Once the subject has been materialized, overriding is a configuration error.
func (b *Builder[T]) OverrideArgs(values ...any) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.built {
		return ErrAlreadyBuilt
	}
	b.overrides = append(b.overrides, values...)
	return nil
}

// BuildArgs returns a copy of the argument values the current subject
// instance was constructed with. It returns nil before the first build.
func (b *Builder[T]) BuildArgs() []any {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.buildArgs == nil {
		return nil
	}
	args := make([]any, len(b.buildArgs))
	copy(args, b.buildArgs)
	return args
}

// Reset clears the mock registry, the constructor overrides and the recorded
// build arguments, runs the accumulated teardown duties such as finishing the
// mock controller, and re-arms the lazy subject so the next access builds a
// fresh instance.
func (b *Builder[T]) Reset() (rErr error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	defer errorkit.Finish(&rErr, b.td.Finish)
	b.mocks = make(map[reflect.Type]any)
	b.overrides = nil
	b.buildArgs = nil
	b.subject = *new(T)
	b.built = false
	b.ctrl = nil
	b.provider = nil
	return nil
}

// Controller returns the builder's shared gomock controller.
// It is created on first use; Reset finishes it and arranges a fresh one.
func (b *Builder[T]) Controller() *gomock.Controller {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.controller()
}

func (b *Builder[T]) controller() *gomock.Controller {
	if b.ctrl == nil {
		b.ctrl = gomock.NewController(b.tb)
		ctrl := b.ctrl
		b.td.Defer(func() error { ctrl.Finish(); return nil })
	}
	return b.ctrl
}

func (b *Builder[T]) build() (T, error) {
	var zero T
	if b.built {
		return b.subject, nil
	}
	ctor, err := b.selectConstructor()
	if err != nil {
		return zero, err
	}
	var (
		subject T
		args    []any
	)
	if ctor.IsValid() {
		subject, args, err = b.construct(ctor)
	} else {
		subject, args, err = b.constructByFields()
	}
	if err != nil {
		return zero, err
	}
	b.subject = subject
	b.buildArgs = args
	b.built = true
	return subject, nil
}

var errorInterfaceType = reflect.TypeOf((*error)(nil)).Elem()

func subjectType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// selectConstructor picks the registered constructor with the most parameters.
// The zero reflect.Value signals that the subject is built field-wise instead.
func (b *Builder[T]) selectConstructor() (reflect.Value, error) {
	if len(b.constructors) == 0 {
		return reflect.Value{}, nil
	}
	st := subjectType[T]()
	var (
		winner    reflect.Value
		maxIn     = -1
		ambiguous bool
	)
	for _, candidate := range b.constructors {
		cv := reflect.ValueOf(candidate)
		if err := validateConstructor(cv, st); err != nil {
			return reflect.Value{}, err
		}
		numIn := cv.Type().NumIn()
		switch {
		case numIn > maxIn:
			winner, maxIn, ambiguous = cv, numIn, false
		case numIn == maxIn:
			ambiguous = true
		}
	}
	if ambiguous {
		return reflect.Value{}, ErrAmbiguousConstructor.F("multiple constructors with %d parameters for %s", maxIn, st.String())
	}
	return winner, nil
}

func validateConstructor(cv reflect.Value, st reflect.Type) error {
	if !cv.IsValid() || cv.Kind() != reflect.Func {
		return ErrInvalidConstructor.F("function expected for %s", st.String())
	}
	ft := cv.Type()
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorInterfaceType {
			return ErrInvalidConstructor.F("%s: second result must be an error", ft.String())
		}
	default:
		return ErrInvalidConstructor.F("%s: one or two results expected", ft.String())
	}
	if !ft.Out(0).AssignableTo(st) {
		return ErrInvalidConstructor.F("%s does not yield %s", ft.String(), st.String())
	}
	return nil
}

func (b *Builder[T]) construct(ctor reflect.Value) (T, []any, error) {
	var zero T
	ft := ctor.Type()
	numIn := ft.NumIn()
	fixed := numIn
	if ft.IsVariadic() {
		fixed = numIn - 1
	}
	if !ft.IsVariadic() && len(b.overrides) > numIn {
		return zero, nil, ErrInvalidSetup.F("%d constructor overrides for %d parameters", len(b.overrides), numIn)
	}
	var (
		in     []reflect.Value
		record []any
	)
	for i := 0; i < fixed; i++ {
		rv, err := b.resolveParameter(i, ft.In(i))
		if err != nil {
			return zero, nil, err
		}
		in = append(in, rv)
		record = append(record, valueToAny(rv))
	}
	if ft.IsVariadic() {
		elem := ft.In(numIn - 1).Elem()
		for i := fixed; i < len(b.overrides); i++ {
			rv, err := memberkit.Coerce(b.overrides[i], elem)
			if err != nil {
				return zero, nil, ErrInvalidSetup.Wrap(err)
			}
			in = append(in, rv)
			record = append(record, valueToAny(rv))
		}
	}
	outs := ctor.Call(in)
	if len(outs) == 2 && !outs[1].IsNil() {
		return zero, nil, outs[1].Interface().(error)
	}
	return outs[0].Interface().(T), record, nil
}

// constructByFields builds the subject without a constructor function:
// the exported fields of the subject struct act as its parameters,
// in declaration order.
func (b *Builder[T]) constructByFields() (T, []any, error) {
	var zero T
	st := subjectType[T]()
	base := st
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return zero, nil, ErrInvalidConstructor.F("no constructor registered and %s is not a struct type", st.String())
	}
	ptr := reflect.New(base)
	sv := ptr.Elem()
	var (
		record []any
		param  int
	)
	for i := 0; i < base.NumField(); i++ {
		fv := sv.Field(i)
		if !fv.CanSet() {
			continue
		}
		rv, err := b.resolveParameter(param, base.Field(i).Type)
		if err != nil {
			return zero, nil, err
		}
		fv.Set(rv)
		record = append(record, valueToAny(rv))
		param++
	}
	var out reflect.Value = sv
	if st.Kind() == reflect.Ptr {
		out = ptr
	}
	return out.Interface().(T), record, nil
}

func (b *Builder[T]) resolveParameter(pos int, pt reflect.Type) (reflect.Value, error) {
	if pos < len(b.overrides) {
		rv, err := memberkit.Coerce(b.overrides[pos], pt)
		if err != nil {
			return reflect.Value{}, ErrInvalidSetup.Wrap(err)
		}
		return rv, nil
	}
	if mock, ok := b.mocks[pt]; ok {
		return memberkit.Coerce(mock, pt)
	}
	if pt == serviceProviderType {
		return reflect.ValueOf(b.serviceProvider()), nil
	}
	if pt.Kind() == reflect.Interface {
		if factory, ok := b.lookupFactory(pt); ok {
			mock, err := b.createMock(pt, factory)
			if err != nil {
				return reflect.Value{}, err
			}
			return memberkit.Coerce(mock, pt)
		}
		rv, err := b.Dummies.MakeValue(pt)
		if err != nil {
			return reflect.Value{}, ErrNoMockFactory.F("parameter %d of type %s", pos, pt.String())
		}
		return rv, nil
	}
	rv, err := b.Dummies.MakeValue(pt)
	if err != nil {
		return reflect.Value{}, ErrInvalidSetup.F("parameter %d: %s", pos, err.Error())
	}
	return rv, nil
}

func valueToAny(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
