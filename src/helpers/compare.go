package helpers

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type ranks follow the BSON comparison order used by MongoDB when sorting
// mixed-type fields.
const (
	rankNull = iota
	rankNumber
	rankString
	rankDocument
	rankArray
	rankObjectID
	rankBool
	rankTime
	rankOther
)

// number holds a numeric value both as int64 (when it is integral) and float64.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int8:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int16:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int32:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case int64:
		return number{i: n, f: float64(n), isInt: true}, true
	case uint:
		return number{i: int64(n), f: float64(n), isInt: n <= math.MaxInt64}, true
	case uint8:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case uint16:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case uint32:
		return number{i: int64(n), f: float64(n), isInt: true}, true
	case uint64:
		return number{i: int64(n), f: float64(n), isInt: n <= math.MaxInt64}, true
	case float32:
		return number{f: float64(n)}, true
	case float64:
		return number{f: n}, true
	}
	return number{}, false
}

// IsNumber reports whether v is one of Go's integer or float kinds.
func IsNumber(v any) bool {
	_, ok := toNumber(v)
	return ok
}

// NumericEqual compares two values as numbers regardless of their width, so
// int(1), int32(1) and float64(1) are all equal. ok is false when either
// value is not a number.
func NumericEqual(a, b any) (equal bool, ok bool) {
	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if !okA || !okB {
		return false, false
	}
	return compareNumbers(na, nb) == 0, true
}

func compareNumbers(a, b number) int {
	if a.isInt && b.isInt {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	switch {
	case a.f < b.f:
		return -1
	case a.f > b.f:
		return 1
	}
	return 0
}

func rankOf(v any) int {
	if v == nil {
		return rankNull
	}
	if IsNumber(v) {
		return rankNumber
	}
	switch v.(type) {
	case string:
		return rankString
	case bson.D, bson.M, map[string]any:
		return rankDocument
	case bson.A, []any:
		return rankArray
	case primitive.ObjectID:
		return rankObjectID
	case bool:
		return rankBool
	case time.Time, primitive.DateTime:
		return rankTime
	}
	return rankOther
}

// CompareValues orders two decoded field values the way a sort on a single
// key would. Values of different types are ordered by type rank, documents
// and arrays compare equal to each other within their rank.
func CompareValues(a, b any) int {
	ra, rb := rankOf(a), rankOf(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case rankNumber:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return compareNumbers(na, nb)
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankObjectID:
		return strings.Compare(a.(primitive.ObjectID).Hex(), b.(primitive.ObjectID).Hex())
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case rankTime:
		ta, tb := asTime(a), asTime(b)
		return ta.Compare(tb)
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}
	return time.Time{}
}
