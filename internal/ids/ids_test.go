package ids

import "testing"

func TestNewIsSortedAndUnique(t *testing.T) {
	t.Parallel()

	prev := ""
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != 26 {
			t.Fatalf("New() = %q, want 26 characters", id)
		}
		if !Valid(id) {
			t.Fatalf("New() = %q does not parse as a ULID", id)
		}
		if id <= prev {
			t.Fatalf("New() = %q not greater than previous %q", id, prev)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("New() returned duplicate %q", id)
		}
		seen[id] = struct{}{}
		prev = id
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	if !Valid("01ARZ3NDEKTSV4RRFFQ69G5FAV") {
		t.Fatal("expected canonical ULID to be valid")
	}
	for _, s := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA", "01arz3ndektsv4rrffq69g5fav"} {
		if Valid(s) {
			t.Fatalf("Valid(%q) = true, want false", s)
		}
	}
}
