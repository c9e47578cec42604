package nodetype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConstraintError reports a value that breaks a field's declared constraints.
// Constraints are advisory: the editor keeps the value and only reports it.
type ConstraintError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("field %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

// CheckValue validates value against the field's declared constraints.
// Empty values are accepted for every type except checkbox.
func CheckValue(f Field, value any) error {
	fail := func(reason string) error {
		return &ConstraintError{Field: f.Name, Reason: reason, Value: value}
	}

	switch f.Type {
	case FieldCheckbox:
		if _, ok := value.(bool); !ok {
			return fail("expected a boolean")
		}
	case FieldSelect:
		s := fmt.Sprint(value)
		if s == "" {
			return nil
		}
		for _, o := range f.Options {
			if o.Value == s {
				return nil
			}
		}
		return fail("not one of the declared options")
	case FieldNumber:
		n, ok, err := asNumber(value)
		if err != nil {
			return fail("not a number")
		}
		if !ok {
			return nil
		}
		if f.Min != nil && n < *f.Min {
			return fail(fmt.Sprintf("below minimum %v", *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return fail(fmt.Sprintf("above maximum %v", *f.Max))
		}
		if f.Step != nil && *f.Step > 0 {
			base := 0.0
			if f.Min != nil {
				base = *f.Min
			}
			q := (n - base) / *f.Step
			if math.Abs(q-math.Round(q)) > 1e-9 {
				return fail(fmt.Sprintf("not a multiple of step %v", *f.Step))
			}
		}
	}
	return nil
}

func asNumber(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported %T", v)
	}
}
