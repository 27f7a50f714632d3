package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	h := NoopHistoryHooks{}
	h.OnExecute("add cell", 1)
	h.OnUndo("add cell")
	h.OnRedo("add cell")

	v := NoopValidationHooks{}
	v.OnValidateStart(ctx, "crypt", 12)
	v.OnValidateComplete(ctx, "crypt", 3, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "validation")
	c.OnCacheMiss(ctx, "validation")
	c.OnCacheSet(ctx, "validation", 1024)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "crypt", time.Millisecond, nil)
	s.OnSave(ctx, "sqlite", "crypt", 2048, time.Millisecond, errors.New("disk full"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("History() should return NoopHistoryHooks by default")
	}
	if _, ok := Validation().(NoopValidationHooks); !ok {
		t.Error("Validation() should return NoopValidationHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customHistory := &testHistoryHooks{}
	SetHistoryHooks(customHistory)
	if History() != customHistory {
		t.Error("SetHistoryHooks should set custom hooks")
	}

	customValidation := &testValidationHooks{}
	SetValidationHooks(customValidation)
	if Validation() != customValidation {
		t.Error("SetValidationHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	Reset()
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("Reset() should restore NoopHistoryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testHistoryHooks{}
	SetHistoryHooks(custom)
	SetHistoryHooks(nil)

	if History() != custom {
		t.Error("SetHistoryHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testHistoryHooks struct{ NoopHistoryHooks }
type testValidationHooks struct{ NoopValidationHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
