package subjectkit

import (
	"reflect"
	"sync"
)

// ServiceProvider is a service-locator style dependency:
// it hands out a registered service instance for a requested type.
type ServiceProvider interface {
	Resolve(serviceType reflect.Type) (any, error)
}

var serviceProviderType = reflect.TypeOf((*ServiceProvider)(nil)).Elem()

// ServiceProviderDouble is a test double for ServiceProvider,
// resolving services from explicitly registered entries.
type ServiceProviderDouble struct {
	// ResolveStub, when set, takes over Resolve entirely.
	ResolveStub func(serviceType reflect.Type) (any, error)

	mutex   sync.Mutex
	entries map[reflect.Type]any
}

// RegisterEntry registers the instance to be resolved for the service type.
// The instance must be assignable to the service type.
func (d *ServiceProviderDouble) RegisterEntry(serviceType reflect.Type, instance any) error {
	if serviceType == nil {
		return ErrInvalidSetup.F("<nil> service type")
	}
	if instance == nil {
		return ErrInvalidSetup.F("<nil> instance for service type %s", serviceType.String())
	}
	if !reflect.TypeOf(instance).AssignableTo(serviceType) {
		return ErrInvalidSetup.F("%T is not assignable to service type %s", instance, serviceType.String())
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.entries == nil {
		d.entries = make(map[reflect.Type]any)
	}
	d.entries[serviceType] = instance
	return nil
}

func (d *ServiceProviderDouble) Resolve(serviceType reflect.Type) (any, error) {
	if d.ResolveStub != nil {
		return d.ResolveStub(serviceType)
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if instance, ok := d.entries[serviceType]; ok {
		return instance, nil
	}
	var name = "<nil>"
	if serviceType != nil {
		name = serviceType.String()
	}
	return nil, ErrServiceNotFound.F("%s", name)
}

// RegisterService configures the builder's service provider double so that
// resolving the given service type yields the given instance or mock.
// When the subject's constructor has a ServiceProvider parameter,
// it receives this double.
func (b *Builder[T]) RegisterService(serviceType reflect.Type, instance any) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.serviceProvider().RegisterEntry(serviceType, instance)
}

// serviceProvider lazily creates the provider double and registers it
// in the mock registry under the ServiceProvider abstraction type.
// The caller must hold b.mutex.
func (b *Builder[T]) serviceProvider() *ServiceProviderDouble {
	if b.provider == nil {
		b.provider = &ServiceProviderDouble{}
		b.mocks[serviceProviderType] = b.provider
	}
	return b.provider
}
