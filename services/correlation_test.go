package services

import (
	"regexp"
	"testing"
)

var correlationPattern = regexp.MustCompile(`^req-[0-9a-f]{12}-\d{13}$`)

func TestNewCorrelationID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCorrelationID()
		if !correlationPattern.MatchString(id) {
			t.Fatalf("NewCorrelationID() = %q, does not match %s", id, correlationPattern)
		}
		if seen[id] {
			t.Fatalf("duplicate correlation id %q", id)
		}
		seen[id] = true
	}
}
