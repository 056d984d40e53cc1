package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	// MaxPayloadLimit caps recommendations in the final payload.
	MaxPayloadLimit = 20
)

// Op is a numeric comparison used by stat filters.
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpLT  Op = "<"
	OpEQ  Op = "=="
)

// StatFilter is a single numeric threshold on a metric.
type StatFilter struct {
	Metric string  `json:"metric"`
	Op     Op      `json:"op"`
	Value  float64 `json:"value"`
}

// Apply evaluates the filter against v.
func (f StatFilter) Apply(v float64) bool {
	switch f.Op {
	case OpGT:
		return v > f.Value
	case OpLTE:
		return v <= f.Value
	case OpLT:
		return v < f.Value
	case OpEQ:
		return v == f.Value
	default:
		return v >= f.Value
	}
}

func (f StatFilter) String() string {
	return fmt.Sprintf("%s %s %g", f.Metric, f.Op, f.Value)
}

// Criteria is the per-query filter/rank specification handed to the engine.
type Criteria struct {
	Position    string       `json:"position,omitempty"`
	League      string       `json:"league,omitempty"`
	AgeMin      *int         `json:"age_min,omitempty"`
	AgeMax      *int         `json:"age_max,omitempty"`
	MinMinutes  float64      `json:"min_minutes"`
	StatFilters []StatFilter `json:"stat_filters,omitempty"`
	SortKey     string       `json:"sort_key,omitempty"`
	SimilarTo   string       `json:"similar_to,omitempty"`
	Limit       int          `json:"limit"`
}

// Normalize returns a copy with the limit clamped to 1..MaxLimit.
func (c Criteria) Normalize() Criteria {
	switch {
	case c.Limit <= 0:
		c.Limit = DefaultLimit
	case c.Limit > MaxLimit:
		c.Limit = MaxLimit
	}
	if c.MinMinutes < 0 {
		c.MinMinutes = 0
	}
	return c
}

// Fingerprint renders the bounds and thresholds that change a result set.
func (c Criteria) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "age=%s-%s;min=%g;limit=%d;like=%s", bound(c.AgeMin), bound(c.AgeMax), c.MinMinutes, c.Limit, c.SimilarTo)
	for _, f := range c.StatFilters {
		b.WriteString(";")
		b.WriteString(f.String())
	}
	return b.String()
}

func bound(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// IntPtr is a small helper for optional age bounds.
func IntPtr(v int) *int { return &v }
