// Package teardown supplies a LIFO stack of deferred finalizer functions.
//
// It is meant for test helpers that accumulate cleanup duties while a test
// case runs, such as finishing mock controllers or releasing doubles,
// and then flush them all at the end of the test (or at an explicit reset).
package teardown

import (
	"sync"

	"go.llib.dev/subjectkit/pkg/errorkit"
)

type Teardown struct {
	mutex sync.Mutex
	fns   []func() error
}

// Defer registers a finalizer function to run when Finish is called.
// Finalizers run in last-in-first-out order, mirroring the behaviour
// of the language level defer statement.
//
// A finalizer may Defer further finalizers; those run in the same Finish pass.
func (td *Teardown) Defer(fn func() error) {
	td.mutex.Lock()
	defer td.mutex.Unlock()
	td.fns = append(td.fns, fn)
}

// Finish runs every deferred finalizer and merges their errors.
// After Finish returns, the stack is empty and the Teardown is reusable.
func (td *Teardown) Finish() error {
	var errs []error
	for !td.isEmpty() { // finalizers deferred during a Finish pass still run
		errs = append(errs, td.run()...)
	}
	return errorkit.Merge(errs...)
}

func (td *Teardown) isEmpty() bool {
	td.mutex.Lock()
	defer td.mutex.Unlock()
	return len(td.fns) == 0
}

func (td *Teardown) run() (errs []error) {
	td.mutex.Lock()
	fns := td.fns
	td.fns = nil
	td.mutex.Unlock()
	for _, fn := range fns {
		defer func(fn func() error) {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}(fn)
	}
	return
}
