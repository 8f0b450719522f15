package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origCommit := Commit
	t.Cleanup(func() { Commit = origCommit })

	Commit = "unknown"
	if Info() != Version {
		t.Errorf("Info() = %q, want %q", Info(), Version)
	}

	Commit = "abcdef1234567890"
	want := Version + " (abcdef1)"
	if Info() != want {
		t.Errorf("Info() = %q, want %q", Info(), want)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, part := range []string{"itrq version " + Version, "Commit:", "Built:"} {
		if !strings.Contains(full, part) {
			t.Errorf("Full() missing %q: %q", part, full)
		}
	}
}
