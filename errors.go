package subjectkit

import "go.llib.dev/subjectkit/pkg/errorkit"

const (
	// ErrAlreadyBuilt is returned when constructor arguments are changed
	// after the subject has been materialized.
	ErrAlreadyBuilt errorkit.Error = "subject is already materialized, constructor arguments can no longer change"

	// ErrAmbiguousConstructor is returned when more than one registered
	// constructor shares the highest parameter count.
	ErrAmbiguousConstructor errorkit.Error = "ambiguous constructor selection"

	// ErrInvalidConstructor is returned when a registered constructor
	// is not a function that can yield the subject type.
	ErrInvalidConstructor errorkit.Error = "invalid constructor"

	// ErrNoMockFactory is returned when a dependency abstraction has to be
	// auto-mocked, but no mock factory is registered for its type.
	ErrNoMockFactory errorkit.Error = "no mock factory registered for the dependency abstraction"

	// ErrInvalidSetup is returned for invalid setup calls,
	// such as nil arguments or a misbehaving mock factory.
	ErrInvalidSetup errorkit.Error = "invalid setup call"

	// ErrServiceNotFound is returned when the service provider double
	// is asked for a service type it has no entry for.
	ErrServiceNotFound errorkit.Error = "service is not registered in the service provider"
)
