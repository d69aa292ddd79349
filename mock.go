package subjectkit

import (
	"reflect"
	"sync"

	"github.com/golang/mock/gomock"
)

// MockFactory creates a mock for a dependency abstraction.
// The controller is the builder's shared gomock controller;
// factories for hand-rolled doubles may ignore it.
type MockFactory func(ctrl *gomock.Controller) any

// RegisterMock pre-registers a ready mock instance in the builder's registry
// under the D abstraction type.
// Constructor parameters of type D resolve to this instance.
func RegisterMock[D any, T any](b *Builder[T], mock D) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.mocks[reflect.TypeOf((*D)(nil)).Elem()] = mock
}

// RegisterMockFactory teaches the builder how to create a mock for the
// D abstraction type, so D typed constructor parameters get auto-mocked.
func RegisterMockFactory[D any, T any](b *Builder[T], factory func(ctrl *gomock.Controller) D) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.factories[reflect.TypeOf((*D)(nil)).Elem()] = func(ctrl *gomock.Controller) any {
		return factory(ctrl)
	}
}

// MockOf returns the registered mock of the D abstraction type,
// creating and registering one through its factory when none exists yet.
// A missing factory fails the bound test.
func MockOf[D any, T any](b *Builder[T]) D {
	b.tb.Helper()
	mock, err := b.getOrCreateMock(reflect.TypeOf((*D)(nil)).Elem())
	if err != nil {
		b.tb.Fatal(err.Error())
	}
	return mock.(D)
}

// LookupMock reports whether a mock is registered for the D abstraction type.
func LookupMock[D any, T any](b *Builder[T]) (D, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	mock, ok := b.mocks[reflect.TypeOf((*D)(nil)).Elem()]
	if !ok {
		var zero D
		return zero, false
	}
	return mock.(D), true
}

func (b *Builder[T]) getOrCreateMock(dt reflect.Type) (any, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if mock, ok := b.mocks[dt]; ok {
		return mock, nil
	}
	factory, ok := b.lookupFactory(dt)
	if !ok {
		return nil, ErrNoMockFactory.F("%s", dt.String())
	}
	return b.createMock(dt, factory)
}

// createMock runs a mock factory and registers its result.
// The caller must hold b.mutex.
func (b *Builder[T]) createMock(dt reflect.Type, factory MockFactory) (any, error) {
	mock := factory(b.controller())
	if mock == nil {
		return nil, ErrInvalidSetup.F("mock factory for %s returned <nil>", dt.String())
	}
	if !reflect.TypeOf(mock).AssignableTo(dt) {
		return nil, ErrInvalidSetup.F("mock factory for %s returned %T", dt.String(), mock)
	}
	b.mocks[dt] = mock
	return mock, nil
}

func (b *Builder[T]) lookupFactory(dt reflect.Type) (MockFactory, bool) {
	if factory, ok := b.factories[dt]; ok {
		return factory, true
	}
	defaultFactoriesMutex.RLock()
	defer defaultFactoriesMutex.RUnlock()
	factory, ok := defaultFactories[dt]
	return factory, ok
}

var (
	defaultFactoriesMutex sync.RWMutex
	defaultFactories      = make(map[reflect.Type]MockFactory)
)

// RegisterDefaultMockFactory registers a process wide fallback mock factory
// for the D abstraction type, shared by every builder.
// Typical usage is a TestMain or an init in the test package,
// wiring generated mock constructors once for the whole suite.
func RegisterDefaultMockFactory[D any](factory func(ctrl *gomock.Controller) D) {
	defaultFactoriesMutex.Lock()
	defer defaultFactoriesMutex.Unlock()
	defaultFactories[reflect.TypeOf((*D)(nil)).Elem()] = func(ctrl *gomock.Controller) any {
		return factory(ctrl)
	}
}
