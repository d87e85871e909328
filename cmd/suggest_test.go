package cmd

import (
	"testing"
)

func TestLocalNow(t *testing.T) {
	now, err := localNow("America/New_York")
	if err != nil {
		t.Fatalf("localNow failed: %v", err)
	}
	if now.Location().String() != "America/New_York" {
		t.Errorf("Expected America/New_York, got %s", now.Location())
	}

	if _, err := localNow("Mars/Olympus"); err == nil {
		t.Error("expected an error for an unknown zone")
	}
}
