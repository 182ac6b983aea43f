// Package format provides shared formatting utilities for status-line
// summaries.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Counts renders a bucket map as "NAME:N" pairs in lexical name order, so a
// summary built from the same data is always the same string. An empty map
// renders as "none".
func Counts(buckets map[string]int) string {
	if len(buckets) == 0 {
		return "none"
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:%d", name, buckets[name])
	}
	return strings.Join(parts, " ")
}

// Window formats a look-back span compactly: whole hours as "24h", whole
// minutes as "90m", anything else as seconds.
func Window(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	default:
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
}

// Value renders a metric observation with its unit, trimming the unit when
// the service reports none.
func Value(v float64, unit string) string {
	if unit == "" || unit == "None" {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%g %s", v, unit)
}
