package inventory

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jmespath/go-jmespath"
)

// evalAny returns the raw value selected by the JMESPath expression, or nil
// when nothing matches.
func evalAny(expression string, payload any) (any, error) {
	v, err := jmespath.Search(expression, payload)
	if err != nil {
		return nil, fmt.Errorf("jmespath: %w", err)
	}
	return v, nil
}

// evalInt coerces the selection to an integer. Decoded JSON numbers arrive
// as float64; numeric strings are accepted too.
func evalInt(expression string, payload any) (int, error) {
	v, err := evalAny(expression, payload)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("expression %q selected nothing", expression)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("expression %q selected non-integer %v", expression, t)
		}
		if t > math.MaxInt32 || t < math.MinInt32 {
			return 0, fmt.Errorf("expression %q selected %v, out of range", expression, t)
		}
		return int(t), nil
	case int:
		return t, nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("expression %q selected %q: %w", expression, t, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expression %q selected %T, want a number", expression, v)
	}
}
