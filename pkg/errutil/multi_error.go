// Package errutil combines errors.
package errutil

import "strings"

// Multi returns nil if all errs are nil, the only non-nil error if there is
// one, and otherwise an error listing every non-nil error in order. Errors
// returned by Multi are flattened into the result.
//
// errors.Is and errors.As see each of the combined errors.
func Multi(errs ...error) error {
	var m multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			m = append(m, err...)
		default:
			m = append(m, err)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

type multiError []error

func (m multiError) Error() string {
	msgs := make([]string, len(m))
	for i, err := range m {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (m multiError) Unwrap() []error { return m }
