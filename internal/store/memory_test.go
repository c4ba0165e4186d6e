package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	m.Seed("Sheet", []string{"A", "B"}, [][]string{{"1", "x"}})

	headers, err := m.Headers(ctx, "Sheet")
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if !reflect.DeepEqual(headers, []string{"A", "B"}) {
		t.Fatalf("headers = %v", headers)
	}

	if err := m.Append(ctx, "Sheet", []string{"2", "y"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	row, err := m.Row(ctx, "Sheet", 2)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if !reflect.DeepEqual(row, []string{"2", "y"}) {
		t.Fatalf("row = %v", row)
	}

	if err := m.Update(ctx, "Sheet", 1, []string{"1", "z"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	row, _ = m.Row(ctx, "Sheet", 1)
	if row[1] != "z" {
		t.Fatalf("updated row = %v", row)
	}
}

func TestMemoryStoreInsertShifts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	m.Seed("Sheet", []string{"A"}, [][]string{{"first"}, {"second"}})

	if err := m.Insert(ctx, "Sheet", 2, []string{"between"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows, err := m.Rows(ctx, "Sheet")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	want := [][]string{{"first"}, {"between"}, {"second"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}

	// One past the end behaves like an append.
	if err := m.Insert(ctx, "Sheet", 4, []string{"last"}); err != nil {
		t.Fatalf("Insert at end: %v", err)
	}
	if row, _ := m.Row(ctx, "Sheet", 4); row[0] != "last" {
		t.Fatalf("row 4 = %v", row)
	}

	if err := m.Insert(ctx, "Sheet", 9, []string{"far"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Insert past end: %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	m.Seed("Sheet", []string{"A"}, [][]string{{"first"}, {"second"}, {"third"}})

	if err := m.Delete(ctx, "Sheet", 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, _ := m.Rows(ctx, "Sheet")
	want := [][]string{{"first"}, {"third"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}

	if err := m.Delete(ctx, "Sheet", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete past end: %v", err)
	}
}

func TestMemoryStoreUnknownResource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	if _, err := m.Headers(ctx, "Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Headers: %v", err)
	}
	if _, err := m.Rows(ctx, "Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Rows: %v", err)
	}
	if err := m.Append(ctx, "Nope", []string{"x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Append: %v", err)
	}
}

func TestMemoryStoreCopiesAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	m.Seed("Sheet", []string{"A"}, [][]string{{"original"}})

	row, _ := m.Row(ctx, "Sheet", 1)
	row[0] = "mutated"

	again, _ := m.Row(ctx, "Sheet", 1)
	if again[0] != "original" {
		t.Fatalf("caller mutation leaked into the store: %v", again)
	}
}

func TestEnsureResourceIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemoryStore()
	if err := m.EnsureResource(ctx, "Sheet", []string{"A", "B"}); err != nil {
		t.Fatalf("EnsureResource: %v", err)
	}
	m.Seed("Sheet", []string{"A", "B"}, [][]string{{"1", "2"}})

	if err := m.EnsureResource(ctx, "Sheet", []string{"other"}); err != nil {
		t.Fatalf("EnsureResource again: %v", err)
	}
	headers, _ := m.Headers(ctx, "Sheet")
	if !reflect.DeepEqual(headers, []string{"A", "B"}) {
		t.Fatalf("existing header must survive, got %v", headers)
	}
	rows, _ := m.Rows(ctx, "Sheet")
	if len(rows) != 1 {
		t.Fatalf("existing rows must survive, got %v", rows)
	}
}
