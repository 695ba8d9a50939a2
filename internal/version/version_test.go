package version

import "testing"

func TestValueDefaultsWhenUnstamped(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = ""
	if got := Value(); got != "v0.0.0-dev" {
		t.Fatalf("expected development placeholder, got %s", got)
	}

	version = "v1.2.3"
	if got := Value(); got != "v1.2.3" {
		t.Fatalf("expected stamped version, got %s", got)
	}
}
