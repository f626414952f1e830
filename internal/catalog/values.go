package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by date fields
const DateLayout = "2006-01-02"

// ErrInvalidValue is wrapped by every FieldError
var ErrInvalidValue = errors.New("invalid specification value")

// FieldError reports which specification entry was rejected and why
type FieldError struct {
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("specification %q: %s", e.Key, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidValue }

// Coerce converts raw form input into typed specification values for a category.
// Numbers become float64, dates are normalised to YYYY-MM-DD, select values must be
// one of the declared options and text stays a string. Empty optional values are
// dropped; keys outside the category's effective field set are rejected.
func Coerce(c Category, raw map[string]any) (map[string]any, error) {
	if _, err := ParseCategory(string(c)); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(raw))
	for key, value := range raw {
		def, ok := Field(c, key)
		if !ok {
			return nil, &FieldError{Key: key, Reason: "not a field of " + string(c)}
		}
		if isBlank(value) {
			continue
		}
		typed, err := coerceValue(def, value)
		if err != nil {
			return nil, &FieldError{Key: key, Reason: err.Error()}
		}
		out[key] = typed
	}

	for _, def := range EffectiveFields(c) {
		if !def.Required {
			continue
		}
		if _, ok := out[def.Key]; !ok {
			return nil, &FieldError{Key: def.Key, Reason: "is required"}
		}
	}
	return out, nil
}

func coerceValue(def FieldDefinition, value any) (any, error) {
	switch def.Kind {
	case KindNumber:
		return toNumber(value)
	case KindDate:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a date string, got %T", value)
		}
		d, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("expected a date in %s format", DateLayout)
		}
		return d.Format(DateLayout), nil
	case KindSelect:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected one of %v, got %T", def.Options, value)
		}
		if !slices.Contains(def.Options, s) {
			return nil, fmt.Errorf("expected one of %v", def.Options)
		}
		return s, nil
	case KindText, KindTextarea:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64, json.Number, int, int64:
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("expected text, got %T", value)
	}
	return nil, fmt.Errorf("unsupported kind %q", def.Kind)
}

func toNumber(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number")
		}
		f = parsed
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number")
	}
	return f, nil
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}
