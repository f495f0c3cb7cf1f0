// Package search turns raw query parameters into typed, validated search
// values and translates those values into store-specific filters: a bson
// document for MongoDB, a scope for GORM, and an in-memory predicate.
package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params gives access to raw query string values. url.Values satisfies it,
// and so does a fiber request through QueryParams.
type Params interface {
	Get(key string) string
}

// ValidationError reports a query parameter that could not be used.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Message)
}

// Criteria is the parsed form of a gift search request.
// Max is nil when the price range is unbounded above.
type Criteria struct {
	Query    string
	Category string
	Min      float64
	Max      *float64
}

// ParseCriteria reads q, category, priceMin and priceMax from params.
// Empty values count as absent and q is kept verbatim. Price bounds must
// be finite, non-negative numbers and priceMin may not exceed priceMax.
func ParseCriteria(params Params) (Criteria, error) {
	c := Criteria{
		Query:    params.Get("q"),
		Category: params.Get("category"),
	}

	if raw := params.Get("priceMin"); raw != "" {
		v, err := parsePrice("priceMin", raw)
		if err != nil {
			return Criteria{}, err
		}
		c.Min = v
	}

	if raw := params.Get("priceMax"); raw != "" {
		v, err := parsePrice("priceMax", raw)
		if err != nil {
			return Criteria{}, err
		}
		c.Max = &v
	}

	if c.Max != nil && c.Min > *c.Max {
		return Criteria{}, &ValidationError{
			Param:   "priceMin",
			Message: fmt.Sprintf("must not be greater than priceMax (%g > %g)", c.Min, *c.Max),
		}
	}
	return c, nil
}

func parsePrice(param, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Param: param, Message: fmt.Sprintf("%q is not a number", raw)}
	}
	if v < 0 {
		return 0, &ValidationError{Param: param, Message: "must not be negative"}
	}
	return v, nil
}

// CatalogQuery is the parsed form of a catalogue browse request.
// MaxAgeYears is nil when no age limit was requested.
type CatalogQuery struct {
	Name        string
	Category    string
	Condition   string
	MaxAgeYears *int
}

// ParseCatalogQuery reads name, category, condition and age_years from params.
func ParseCatalogQuery(params Params) (CatalogQuery, error) {
	q := CatalogQuery{
		Name:      params.Get("name"),
		Category:  params.Get("category"),
		Condition: params.Get("condition"),
	}

	if raw := params.Get("age_years"); raw != "" {
		years, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return CatalogQuery{}, &ValidationError{Param: "age_years", Message: fmt.Sprintf("%q is not an integer", raw)}
		}
		if years < 0 {
			return CatalogQuery{}, &ValidationError{Param: "age_years", Message: "must not be negative"}
		}
		q.MaxAgeYears = &years
	}
	return q, nil
}
