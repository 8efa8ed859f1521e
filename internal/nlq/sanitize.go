package nlq

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParamKind selects the sanitizer applied to a placeholder value
type ParamKind string

const (
	KindUUID   ParamKind = "uuid"
	KindDate   ParamKind = "date"
	KindEnum   ParamKind = "enum"
	KindNumber ParamKind = "number"
	KindString ParamKind = "string"
)

var (
	uuidRe = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// cohortTypes is the closed vocabulary for the cohortType placeholder
var cohortTypes = map[string]bool{
	"industry":     true,
	"region":       true,
	"company_size": true,
}

// InferKind decides the sanitizer for a placeholder from its name alone.
// This name-sniffing is the compatibility baseline; templates can override
// it per parameter via their declared parameter kinds.
func InferKind(name string) ParamKind {
	switch {
	case name == "companyId" || strings.HasSuffix(name, "Id"):
		return KindUUID
	case strings.Contains(name, "date") || strings.Contains(name, "Date"):
		return KindDate
	case name == "cohortType":
		return KindEnum
	default:
		return KindString
	}
}

// ParseKind maps a declared kind string to a ParamKind
func ParseKind(s string) (ParamKind, bool) {
	switch ParamKind(s) {
	case KindUUID, KindDate, KindEnum, KindNumber, KindString:
		return ParamKind(s), true
	}
	return "", false
}

// sanitizeValue renders a context value as a safe SQL literal. Arrays are
// sanitized element by element and joined for IN clauses.
func sanitizeValue(name string, kind ParamKind, v any) (string, error) {
	switch arr := v.(type) {
	case []any:
		return sanitizeArray(name, kind, arr)
	case []string:
		elems := make([]any, len(arr))
		for i, s := range arr {
			elems[i] = s
		}
		return sanitizeArray(name, kind, elems)
	}

	switch kind {
	case KindUUID:
		s := stringify(v)
		if !uuidRe.MatchString(s) {
			return "", newError(ErrInvalidUUID, "parameter %q is not a valid UUID: %q", name, s)
		}
		return "'" + s + "'", nil

	case KindDate:
		s := stringify(v)
		if !dateRe.MatchString(s) {
			return "", newError(ErrInvalidDate, "parameter %q is not an ISO date: %q", name, s)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return "", newError(ErrInvalidDate, "parameter %q is not a valid calendar date: %q", name, s)
		}
		return "'" + s + "'", nil

	case KindEnum:
		s := stringify(v)
		if !cohortTypes[s] {
			return "", newError(ErrInvalidEnum, "parameter %q has invalid value %q (allowed: industry, region, company_size)", name, s)
		}
		return "'" + s + "'", nil

	case KindNumber:
		return sanitizeNumber(name, v)
	}

	// Generic values: numbers stay unquoted, everything else becomes an
	// escaped quoted literal.
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return sanitizeNumber(name, v)
	case bool:
		return fmt.Sprintf("%v", v), nil
	}
	return quoteString(stringify(v)), nil
}

func sanitizeArray(name string, kind ParamKind, elems []any) (string, error) {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		s, err := sanitizeValue(name, kind, e)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func sanitizeNumber(name string, v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return sanitizeFloat(name, float64(n))
	case float64:
		return sanitizeFloat(name, n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return sanitizeFloat(name, f)
		}
	}
	return "", newError(ErrInvalidNumber, "parameter %q is not numeric: %v", name, v)
}

func sanitizeFloat(name string, f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", newError(ErrInvalidNumber, "parameter %q is not finite", name)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// quoteString doubles embedded single quotes and wraps the value, so a
// hostile value can never terminate the literal it is embedded in.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
