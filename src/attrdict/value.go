package attrdict

import (
	"fmt"

	"github.com/spf13/cast"
)

// Value is what Record.Get returns: the stored field value tagged with its
// Kind. The zero Value is KindMissing.
type Value struct {
	kind Kind
	v    any
}

func valueOf(v any) Value {
	switch v.(type) {
	case *Record:
		return Value{kind: KindRecord, v: v}
	case Reference:
		return Value{kind: KindReference, v: v}
	case []any:
		return Value{kind: KindSequence, v: v}
	}
	return Value{kind: KindScalar, v: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Interface returns the stored value as is (nil when missing).
func (v Value) Interface() any { return v.v }

// Record returns the nested record, or nil when the value is not one.
func (v Value) Record() *Record {
	r, _ := v.v.(*Record)
	return r
}

// Sequence returns the stored slice, or nil when the value is not one.
func (v Value) Sequence() []any {
	s, _ := v.v.([]any)
	return s
}

func (v Value) Reference() (Reference, bool) {
	r, ok := v.v.(Reference)
	return r, ok
}

// Int64 converts a scalar to int64. Numbers of any width and numeric
// strings convert; anything else is an error.
func (v Value) Int64() (int64, error) {
	if v.kind != KindScalar {
		return 0, fmt.Errorf("%s is not a scalar: %w", v.kind, ErrWrongKind)
	}
	return cast.ToInt64E(v.v)
}

func (v Value) Float64() (float64, error) {
	if v.kind != KindScalar {
		return 0, fmt.Errorf("%s is not a scalar: %w", v.kind, ErrWrongKind)
	}
	return cast.ToFloat64E(v.v)
}

func (v Value) Str() (string, error) {
	if v.kind != KindScalar {
		return "", fmt.Errorf("%s is not a scalar: %w", v.kind, ErrWrongKind)
	}
	return cast.ToStringE(v.v)
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindScalar {
		return false, fmt.Errorf("%s is not a scalar: %w", v.kind, ErrWrongKind)
	}
	return cast.ToBoolE(v.v)
}
