package logging

import (
	"context"
	"testing"
)

func TestSQLiteStorePersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:advice_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Append(ctx, sampleRecord(t, "api", true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, sampleRecord(t, "cli", false)); err != nil {
		t.Fatalf("append: %v", err)
	}

	out, err := store.Query(ctx, AdviceQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}

	out, err = store.Query(ctx, AdviceQuery{FeasibleOnly: true})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].Source != "api" {
		t.Fatalf("feasible filter returned %+v", out)
	}

	out, err = store.Query(ctx, AdviceQuery{Weather: "Clear", Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("weather filter returned %d records, want 1", len(out))
	}
}
