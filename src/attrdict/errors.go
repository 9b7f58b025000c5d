package attrdict

import "errors"

// ErrMissingField is returned when deleting a field that is not present.
var ErrMissingField = errors.New("missing field")

// ErrWrongKind is returned by the typed Value accessors.
var ErrWrongKind = errors.New("wrong value kind")
