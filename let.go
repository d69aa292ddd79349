package subjectkit

import "go.llib.dev/testcase"

// Let binds a Builder to a testcase.Spec as a test case scoped variable.
// Each test case receives its own builder with a fresh dummy value source,
// and the builder resets itself when the test case finishes.
func Let[T any](s *testcase.Spec, opts ...Option[T]) testcase.Var[*Builder[T]] {
	return testcase.Let(s, func(t *testcase.T) *Builder[T] {
		return New[T](t, opts...)
	})
}
