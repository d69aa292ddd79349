package subjectkit_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"go.llib.dev/subjectkit"
	"go.llib.dev/testcase/assert"
)

type locatorBased struct {
	Provider subjectkit.ServiceProvider
}

func newLocatorBased(provider subjectkit.ServiceProvider) *locatorBased {
	return &locatorBased{Provider: provider}
}

var storageType = reflect.TypeOf((*Storage)(nil)).Elem()

func TestServiceProviderDouble(t *testing.T) {
	t.Run("resolves registered entries", func(t *testing.T) {
		d := &subjectkit.ServiceProviderDouble{}
		storage := &StorageDouble{}
		require.NoError(t, d.RegisterEntry(storageType, storage))

		got, err := d.Resolve(storageType)
		require.NoError(t, err)
		require.True(t, got.(Storage) == Storage(storage))
	})

	t.Run("unknown service type", func(t *testing.T) {
		d := &subjectkit.ServiceProviderDouble{}
		_, err := d.Resolve(storageType)
		assert.ErrorIs(t, err, subjectkit.ErrServiceNotFound)
	})

	t.Run("nil service type registration", func(t *testing.T) {
		d := &subjectkit.ServiceProviderDouble{}
		err := d.RegisterEntry(nil, &StorageDouble{})
		assert.ErrorIs(t, err, subjectkit.ErrInvalidSetup)
	})

	t.Run("nil instance registration", func(t *testing.T) {
		d := &subjectkit.ServiceProviderDouble{}
		err := d.RegisterEntry(storageType, nil)
		assert.ErrorIs(t, err, subjectkit.ErrInvalidSetup)
	})

	t.Run("instance must be assignable to the service type", func(t *testing.T) {
		d := &subjectkit.ServiceProviderDouble{}
		err := d.RegisterEntry(storageType, 42)
		assert.ErrorIs(t, err, subjectkit.ErrInvalidSetup)
	})

	t.Run("the resolve stub takes over", func(t *testing.T) {
		expected := &StorageDouble{}
		d := &subjectkit.ServiceProviderDouble{
			ResolveStub: func(serviceType reflect.Type) (any, error) { return expected, nil },
		}
		got, err := d.Resolve(storageType)
		require.NoError(t, err)
		require.True(t, got.(Storage) == Storage(expected))
	})
}

func TestBuilder_RegisterService(t *testing.T) {
	t.Run("a service provider parameter receives the primed double", func(t *testing.T) {
		b := subjectkit.New[*locatorBased](t,
			subjectkit.WithConstructor[*locatorBased](newLocatorBased))
		storage := &StorageDouble{}
		require.NoError(t, b.RegisterService(storageType, storage))

		subject := b.Subject()
		got, err := subject.Provider.Resolve(storageType)
		require.NoError(t, err)
		require.True(t, got.(Storage) == Storage(storage))
	})

	t.Run("the provider double lives in the mock registry", func(t *testing.T) {
		b := subjectkit.New[*locatorBased](t,
			subjectkit.WithConstructor[*locatorBased](newLocatorBased))
		require.NoError(t, b.RegisterService(storageType, &StorageDouble{}))

		provider, ok := subjectkit.LookupMock[subjectkit.ServiceProvider](b)
		require.True(t, ok)
		require.True(t, b.Subject().Provider == provider)
	})

	t.Run("without priming, a provider parameter still resolves to a double", func(t *testing.T) {
		b := subjectkit.New[*locatorBased](t,
			subjectkit.WithConstructor[*locatorBased](newLocatorBased))

		subject := b.Subject()
		require.NotNil(t, subject.Provider)
		_, err := subject.Provider.Resolve(storageType)
		require.ErrorIs(t, err, subjectkit.ErrServiceNotFound)
	})

	t.Run("reset discards the primed entries", func(t *testing.T) {
		b := subjectkit.New[*locatorBased](t,
			subjectkit.WithConstructor[*locatorBased](newLocatorBased))
		require.NoError(t, b.RegisterService(storageType, &StorageDouble{}))
		require.NoError(t, b.Reset())

		subject := b.Subject()
		_, err := subject.Provider.Resolve(storageType)
		require.ErrorIs(t, err, subjectkit.ErrServiceNotFound)
	})
}
