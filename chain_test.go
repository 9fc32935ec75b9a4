package chain

import (
	"errors"
	"testing"
)

// layers matching the canonical example: local {"a":1}, base {"a":2,"b":3}.
func exampleMaps() (map[string]int, map[string]int) {
	return map[string]int{"a": 1}, map[string]int{"a": 2, "b": 3}
}

func mustNew[K comparable, V any](t *testing.T, policy Policy, layers ...Layer[K, V]) *Chain[K, V] {
	t.Helper()
	c, err := New(policy, layers...)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return c
}

func TestFirstPrefersEarliestLayer(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	if got, err := c.Get("a"); err != nil || got != 1 {
		t.Fatalf("expected a=1, got %d err=%v", got, err)
	}
	if got, err := c.Get("b"); err != nil || got != 3 {
		t.Fatalf("expected b=3 from the base layer, got %d err=%v", got, err)
	}
}

func TestFirstMissingKey(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	if _, err := c.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestEmptyChainLookups(t *testing.T) {
	c := mustNew[string, int](t, PolicyFirst)

	if _, err := c.Get("a"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on empty chain, got %v", err)
	}
	if err := c.Set("a", 1); !errors.Is(err, ErrImmutableLayer) {
		t.Fatalf("expected ErrImmutableLayer on empty chain, got %v", err)
	}
}

func TestFirstOrDefault(t *testing.T) {
	local, base := exampleMaps()
	c := NewWithDefault(42, NewMapLayer(local), NewMapLayer(base))

	if got, err := c.Get("a"); err != nil || got != 1 {
		t.Fatalf("present key must bypass the default, got %d err=%v", got, err)
	}
	if got, err := c.Get("missing"); err != nil || got != 42 {
		t.Fatalf("expected the configured default 42, got %d err=%v", got, err)
	}
	if def, ok := c.Default(); !ok || def != 42 {
		t.Fatalf("expected default 42 to be recorded, got %d ok=%v", def, ok)
	}
	if c.Policy() != PolicyFirstOrDefault {
		t.Fatalf("expected PolicyFirstOrDefault, got %s", c.Policy())
	}
}

func TestUniqueAgreementAcrossLayers(t *testing.T) {
	c := mustNew(t, PolicyUnique,
		NewMapLayer(map[string]int{"a": 7}),
		NewMapLayer(map[string]int{"a": 7, "b": 3}),
		NewMapLayer(map[string]int{"a": 7}),
	)

	if got, err := c.Get("a"); err != nil || got != 7 {
		t.Fatalf("expected agreed value 7, got %d err=%v", got, err)
	}
	if got, err := c.Get("b"); err != nil || got != 3 {
		t.Fatalf("single containing layer is trivially unique, got %d err=%v", got, err)
	}
	if _, err := c.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestUniqueConflict(t *testing.T) {
	local, base := exampleMaps()
	c := mustNew(t, PolicyUnique, NewMapLayer(local), NewMapLayer(base))

	_, err := c.Get("a")
	if !errors.Is(err, ErrInconsistentValue) {
		t.Fatalf("expected ErrInconsistentValue, got %v", err)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a *ConflictError, got %T", err)
	}
	if conflict.Key != "a" {
		t.Fatalf("conflict must name the key, got %v", conflict.Key)
	}
	if len(conflict.Values) != 2 || conflict.Values[0] != 1 || conflict.Values[1] != 2 {
		t.Fatalf("conflict must carry both values in layer order, got %v", conflict.Values)
	}
}

func TestUniqueDeepEquality(t *testing.T) {
	c := mustNew(t, PolicyUnique,
		NewMapLayer(map[string][]string{"tags": {"x", "y"}}),
		NewMapLayer(map[string][]string{"tags": {"x", "y"}}),
	)

	got, err := c.Get("tags")
	if err != nil {
		t.Fatalf("slices with equal contents must agree: %v", err)
	}
	if len(got) != 2 || got[0] != "x" {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestGetAllOrderedByLayer(t *testing.T) {
	local, base := exampleMaps()
	c := mustNew(t, PolicyAll, NewMapLayer(local), NewMapLayer(base))

	values, err := c.GetAll("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Fatalf("expected [1 2] in layer order, got %v", values)
	}

	values, err = c.GetAll("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 || values[0] != 3 {
		t.Fatalf("expected [3], got %v", values)
	}

	if _, err := c.GetAll("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("an absent key fails, it does not yield an empty slice; got %v", err)
	}
}

func TestGetOnAllPolicyIsRejected(t *testing.T) {
	c := mustNew(t, PolicyAll, NewMapLayer(map[string]int{"a": 1}))

	if _, err := c.Get("a"); !errors.Is(err, ErrAggregatePolicy) {
		t.Fatalf("expected ErrAggregatePolicy, got %v", err)
	}
}

func TestNewRejectsBadPolicies(t *testing.T) {
	if _, err := New[string, int](PolicyUnknown); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy for the zero value, got %v", err)
	}
	if _, err := New[string, int](Policy(42)); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy for out-of-range, got %v", err)
	}
	if _, err := New[string, int](PolicyFirstOrDefault); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("PolicyFirstOrDefault must go through NewWithDefault, got %v", err)
	}
}

func TestReadAfterWrite(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	if err := c.Set("b", 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, err := c.Get("b"); err != nil || got != 9 {
		t.Fatalf("write must shadow the base layer, got %d err=%v", got, err)
	}
	if base["b"] != 3 {
		t.Fatalf("base layer must never be written, got %d", base["b"])
	}
}

func TestDeleteFallthrough(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, err := c.Get("a"); err != nil || got != 2 {
		t.Fatalf("expected fallthrough to the base value 2, got %d err=%v", got, err)
	}
}

func TestDeleteAbsentFromLocalLayer(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	// "b" is visible through the chain but lives only in the base layer.
	if err := c.Delete("b"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if got, _ := c.Get("b"); got != 3 {
		t.Fatalf("base layer must be untouched, got %d", got)
	}
}

func TestImmutableLocalLayer(t *testing.T) {
	type limits struct {
		Retries int
		Burst   int
	}
	fields, err := NewFieldLayer(limits{Retries: 2, Burst: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := mustNew[string, any](t, PolicyFirst, fields, NewMapLayer(map[string]any{"Retries": 5}))

	if got, err := c.Get("Retries"); err != nil || got != 2 {
		t.Fatalf("record layer must resolve reads, got %v err=%v", got, err)
	}
	if err := c.Set("Retries", 9); !errors.Is(err, ErrImmutableLayer) {
		t.Fatalf("expected ErrImmutableLayer on write, got %v", err)
	}
	if err := c.Delete("Retries"); !errors.Is(err, ErrImmutableLayer) {
		t.Fatalf("expected ErrImmutableLayer on delete, got %v", err)
	}
}

func TestSharedLayerMutationIsVisible(t *testing.T) {
	base := map[string]int{"a": 2}
	c := Overlay(map[string]int{}, base)

	base["late"] = 11
	if got, err := c.Get("late"); err != nil || got != 11 {
		t.Fatalf("layers are shared by reference, got %d err=%v", got, err)
	}
}

func TestAssignRemoveChaining(t *testing.T) {
	c := Overlay(map[string]int{}, map[string]int{"b": 3})

	c.Assign("a", 1).Assign("b", 2).Remove("a")
	if err := c.Err(); err != nil {
		t.Fatalf("unexpected deferred error: %v", err)
	}
	if got, _ := c.Get("b"); got != 2 {
		t.Fatalf("expected chained writes to land, got %d", got)
	}
	if _, err := c.Get("a"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected a to be removed, got %v", err)
	}
}

func TestAssignRetainsFirstError(t *testing.T) {
	c := Overlay(map[string]int{})

	c.Remove("ghost").Assign("a", 1).Remove("also-ghost")
	if err := c.Err(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected the first failure to stick, got %v", err)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Err must drain the deferred error, got %v", err)
	}
	// The write after the failure must not have been applied.
	if _, err := c.Get("a"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected no write after a deferred failure, got %v", err)
	}
}

func TestKeysAndContains(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	keys := c.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 distinct keys, got %v", keys)
	}
	if !c.Contains("a") || !c.Contains("b") || c.Contains("z") {
		t.Fatalf("unexpected containment results")
	}
}

func TestSnapshotIsDetachedFirstMatchView(t *testing.T) {
	local, base := exampleMaps()
	c := Overlay(local, base)

	snap := c.Snapshot()
	if snap["a"] != 1 || snap["b"] != 3 || len(snap) != 2 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	if err := c.Set("a", 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap["a"] != 1 {
		t.Fatalf("snapshot must be detached from later writes, got %d", snap["a"])
	}
}

func TestLookupLoggerReceivesEvents(t *testing.T) {
	local, base := exampleMaps()
	var events []LookupEvent
	c := Overlay(local, base).WithLogger(LookupLoggerFunc(func(event LookupEvent) {
		events = append(events, event)
	}))

	if _, err := c.Get("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get("missing"); err == nil {
		t.Fatalf("expected a failing lookup")
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Key != "b" || events[0].LayerHit != 1 || events[0].Err != nil {
		t.Fatalf("unexpected hit event %+v", events[0])
	}
	if events[1].LayerHit != -1 || !errors.Is(events[1].Err, ErrKeyNotFound) {
		t.Fatalf("unexpected miss event %+v", events[1])
	}
	if events[0].Policy != PolicyFirst {
		t.Fatalf("event must carry the chain policy, got %s", events[0].Policy)
	}
}

func TestLayersReturnsDefensiveCopy(t *testing.T) {
	c := Overlay(map[string]int{"a": 1})

	layers := c.Layers()
	layers[0] = nil
	if got, err := c.Get("a"); err != nil || got != 1 {
		t.Fatalf("mutating the returned slice must not affect the chain: %d %v", got, err)
	}
}
