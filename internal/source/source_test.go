package source

import (
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

var testLog = slog.New(slog.DiscardHandler)

func TestWindowEnding(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := WindowEnding(until, 24*time.Hour)

	if want := until.Add(-24 * time.Hour); !w.Since.Equal(want) {
		t.Errorf("Since = %v, want %v", w.Since, want)
	}
	if !w.Until.Equal(until) {
		t.Errorf("Until = %v, want %v", w.Until, until)
	}
	if w.Span() != 24*time.Hour {
		t.Errorf("Span() = %v, want 24h", w.Span())
	}
}

func TestMorePages(t *testing.T) {
	if morePages(nil) {
		t.Error("morePages(nil) = true, want false")
	}
	if morePages(aws.String("")) {
		t.Error(`morePages("") = true, want false`)
	}
	if !morePages(aws.String("next")) {
		t.Error(`morePages("next") = false, want true`)
	}
}
