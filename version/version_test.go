package version

import "testing"

func TestStringNonEmpty(t *testing.T) {
	if String() == "" {
		t.Fatal("version must not be empty")
	}
}
