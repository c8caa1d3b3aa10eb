package execution

import (
	"bytes"
	"fmt"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// Predicate decides whether a tuple passes a selection. An error aborts the query.
type Predicate func(t storage.Tuple) (bool, error)

type ComparisonType int

const (
	Equal ComparisonType = iota
	NotEqual
	GreaterThan
	LessThan
	GreaterThanOrEqual
	LessThanOrEqual
)

func (c ComparisonType) String() string {
	switch c {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanOrEqual:
		return ">="
	case LessThanOrEqual:
		return "<="
	}
	return "???"
}

// ParseComparison parses the operator forms produced by ComparisonType.String.
func ParseComparison(s string) (ComparisonType, error) {
	for c := Equal; c <= LessThanOrEqual; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown comparison operator %q", s)
}

// CompareColumn returns a predicate comparing column col, decoded as colType, against literal. A float compared
// with NaN on either side never matches, except under NotEqual.
func CompareColumn(col int, colType common.Type, op ComparisonType, literal common.Value) Predicate {
	common.Assert(colType.Kind() == literal.Type().Kind(), "cannot compare %s column with %s literal", colType, literal.Type())
	return func(t storage.Tuple) (bool, error) {
		v, err := t.Value(col, colType)
		if err != nil {
			return false, err
		}
		cmp, ordered := v.Compare(literal)
		if !ordered {
			return op == NotEqual, nil
		}
		switch op {
		case Equal:
			return cmp == 0, nil
		case NotEqual:
			return cmp != 0, nil
		case GreaterThan:
			return cmp > 0, nil
		case LessThan:
			return cmp < 0, nil
		case GreaterThanOrEqual:
			return cmp >= 0, nil
		case LessThanOrEqual:
			return cmp <= 0, nil
		}
		panic("unknown comparison")
	}
}

// ColumnEquals returns a predicate matching tuples whose column col holds exactly the given encoded bytes.
func ColumnEquals(col int, field []byte) Predicate {
	return func(t storage.Tuple) (bool, error) {
		f, err := t.Field(col)
		if err != nil {
			return false, err
		}
		return bytes.Equal(f, field), nil
	}
}

// And matches tuples accepted by every predicate. Evaluation stops at the first rejection.
func And(predicates ...Predicate) Predicate {
	return func(t storage.Tuple) (bool, error) {
		for _, p := range predicates {
			ok, err := p(t)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Or matches tuples accepted by any predicate.
func Or(predicates ...Predicate) Predicate {
	return func(t storage.Tuple) (bool, error) {
		for _, p := range predicates {
			ok, err := p(t)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

func Not(p Predicate) Predicate {
	return func(t storage.Tuple) (bool, error) {
		ok, err := p(t)
		return !ok && err == nil, err
	}
}
