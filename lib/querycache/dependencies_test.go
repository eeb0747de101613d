package querycache

import (
	"sort"
	"testing"
)

func keyStrings(keys []Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

func TestResolveSkipsActionSpecificTargets(t *testing.T) {
	keys, patterns := DefaultDependencies.Resolve(Change{Entity: EntityProject, Action: ActionUpdate, ID: "p1"})

	got := keyStrings(keys)
	want := []string{"q:admin_stats:", "q:project:", "q:project:p1"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
	if len(patterns) != 1 || patterns[0] != "q:consultant_assignment:*" {
		t.Fatalf("patterns = %v", patterns)
	}
}

func TestResolveProjectDeleteReachesChildren(t *testing.T) {
	keys, patterns := DefaultDependencies.Resolve(Change{Entity: EntityProject, Action: ActionDelete, ID: "p1"})

	found := false
	for _, k := range keys {
		if k.String() == "q:assignment:p1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected assignment list of p1 in %v", keyStrings(keys))
	}
	if len(patterns) != 3 {
		t.Fatalf("expected consultant assignment, invoice and task patterns, got %v", patterns)
	}
}

func TestResolveSkipsMissingParents(t *testing.T) {
	keys, _ := DefaultDependencies.Resolve(Change{Entity: EntityInvoice, Action: ActionCreate, ID: "i1"})
	if len(keys) != 0 {
		t.Fatalf("expected no keys without an assignment parent, got %v", keyStrings(keys))
	}

	keys, _ = DefaultDependencies.Resolve(Change{
		Entity:  EntityInvoice,
		Action:  ActionCreate,
		ID:      "i1",
		Parents: map[Entity]string{EntityAssignment: "a1"},
	})
	if got := keyStrings(keys); len(got) != 1 || got[0] != "q:invoice:a1" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestResolveUnknownEntity(t *testing.T) {
	keys, patterns := DefaultDependencies.Resolve(Change{Entity: "unknown", ID: "x"})
	if len(keys) != 0 || len(patterns) != 0 {
		t.Fatalf("expected nothing, got %v %v", keys, patterns)
	}
}

func TestResolveSkipsPatchedKeys(t *testing.T) {
	keys, _ := DefaultDependencies.Resolve(Change{
		Entity:  EntityAssignment,
		Action:  ActionCreate,
		ID:      "a1",
		Parents: map[Entity]string{EntityProject: "p1", EntityConsultant: "c1"},
		Patched: []Key{ScopedKey(EntityAssignment, "p1")},
	})
	got := keyStrings(keys)
	if len(got) != 1 || got[0] != "q:consultant_assignment:c1" {
		t.Fatalf("unexpected keys %v", got)
	}
}
