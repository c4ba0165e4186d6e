package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fleetdesk/apiserver/internal/permissions"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/google/uuid"
)

func seedCleaning(mem *store.MemoryStore) {
	mem.Seed(permissions.ResourceCleaningLog,
		[]string{"ID", "Date", "Plate Number", "Cleaned By", "Notes", "Photo"},
		nil,
	)
}

func seedSuivi(mem *store.MemoryStore, rows [][]string) {
	mem.Seed(permissions.ResourceSuivi,
		[]string{"ID", "Status", "Machinery", "Type", "Model Type", "Plate Number",
			"Insurance", "Technical Inspection", "Certificate", "Documents"},
		rows,
	)
	mem.Seed(permissions.ResourceMachineryTypes,
		[]string{"Machinery", "Type"},
		[][]string{
			{"Excavator", "Heavy"},
			{"Pickup", "Light"},
		},
	)
}

func newTestMapper(mem *store.MemoryStore, fake *fakeObjectStorage) *Mapper {
	m := NewMapper(mem, newTestAttachments(fake), time.UTC)
	m.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return m
}

func TestSubmissionCaseInsensitive(t *testing.T) {
	t.Parallel()

	sub := NewSubmission(map[string]any{"Username": "karim", " notes ": "ok", "Count": 3})
	if got := sub.Get("username"); got != "karim" {
		t.Fatalf("Get(username) = %q", got)
	}
	if got := sub.Get("NOTES"); got != "ok" {
		t.Fatalf("Get(NOTES) = %q", got)
	}
	if got := sub.Get("count"); got != "3" {
		t.Fatalf("non-string values must be stringified, got %q", got)
	}
	if sub.Has("missing") {
		t.Fatal("Has(missing) = true")
	}

	sub.Set("USERNAME", "amine")
	if got := sub.Get("Username"); got != "amine" {
		t.Fatalf("Set must reuse the submitted spelling, got %q", got)
	}
}

func TestMapForAppendAlignsToHeader(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	seedCleaning(mem)
	mapper := newTestMapper(mem, newFakeStorage())

	sub := NewSubmission(map[string]any{
		"plate number": "AB-123",
		"Cleaned By":   "Samir",
		"Ghost Column": "dropped",
	})
	headers, values, err := mapper.MapForAppend(context.Background(), permissions.ResourceCleaningLog, sub)
	if err != nil {
		t.Fatalf("MapForAppend error: %v", err)
	}
	if len(values) != len(headers) {
		t.Fatalf("len(values) = %d, want %d", len(values), len(headers))
	}

	byHeader := map[string]string{}
	for i, h := range headers {
		byHeader[h] = values[i]
	}
	if byHeader["Plate Number"] != "AB-123" {
		t.Fatalf("Plate Number = %q", byHeader["Plate Number"])
	}
	if byHeader["Cleaned By"] != "Samir" {
		t.Fatalf("Cleaned By = %q", byHeader["Cleaned By"])
	}
	if byHeader["Notes"] != "" {
		t.Fatalf("missing columns must default to empty, got %q", byHeader["Notes"])
	}
	for _, v := range values {
		if v == "dropped" {
			t.Fatal("columns absent from the header must be dropped")
		}
	}
	if byHeader["Date"] != "14/03/2026 09:30" {
		t.Fatalf("empty timestamp column must be filled, got %q", byHeader["Date"])
	}
	if _, err := uuid.Parse(byHeader["ID"]); err != nil {
		t.Fatalf("ID column must get a UUID, got %q", byHeader["ID"])
	}
}

func TestMapForAppendKeepsCallerTimestamp(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	seedCleaning(mem)
	mapper := newTestMapper(mem, newFakeStorage())

	sub := NewSubmission(map[string]any{"Date": "01/01/2026"})
	headers, values, err := mapper.MapForAppend(context.Background(), permissions.ResourceCleaningLog, sub)
	if err != nil {
		t.Fatalf("MapForAppend error: %v", err)
	}
	for i, h := range headers {
		if h == "Date" && values[i] != "01/01/2026" {
			t.Fatalf("caller-supplied timestamp overwritten: %q", values[i])
		}
	}
}

func TestMapForAppendDerivesClassification(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	seedSuivi(mem, nil)
	mapper := newTestMapper(mem, newFakeStorage())

	sub := NewSubmission(map[string]any{"Machinery": "excavator", "Plate Number": "EX-1"})
	headers, values, err := mapper.MapForAppend(context.Background(), permissions.ResourceSuivi, sub)
	if err != nil {
		t.Fatalf("MapForAppend error: %v", err)
	}
	for i, h := range headers {
		if h == "Type" && values[i] != "Heavy" {
			t.Fatalf("Type = %q, want Heavy", values[i])
		}
	}

	// Unmapped categories yield an empty classification, not an error.
	sub = NewSubmission(map[string]any{"Machinery": "Hovercraft"})
	headers, values, err = mapper.MapForAppend(context.Background(), permissions.ResourceSuivi, sub)
	if err != nil {
		t.Fatalf("MapForAppend error: %v", err)
	}
	for i, h := range headers {
		if h == "Type" && values[i] != "" {
			t.Fatalf("unknown machinery must classify to empty, got %q", values[i])
		}
	}
}

func TestMapForUpdateMergesPartial(t *testing.T) {
	t.Parallel()

	mapper := newTestMapper(store.NewMemoryStore(), newFakeStorage())
	headers := []string{"ID", "Status", "Notes"}
	existing := []string{"u-1", "Pending", "old note"}

	values := mapper.MapForUpdate(headers, existing, NewSubmission(map[string]any{"status": "Completed"}))
	if values[0] != "u-1" || values[1] != "Completed" || values[2] != "old note" {
		t.Fatalf("unexpected merge result: %v", values)
	}
}

func TestExternalizeUploadsDataURIs(t *testing.T) {
	t.Parallel()

	fake := newFakeStorage()
	mapper := newTestMapper(store.NewMemoryStore(), fake)

	sub := NewSubmission(map[string]any{
		"Photo":        pngDataURI,
		"Plate Number": "AB-123",
		"Notes":        "left as-is",
	})
	effects := mapper.Externalize(context.Background(), permissions.ResourceCleaningLog, sub)
	if len(effects) != 0 {
		t.Fatalf("unexpected side effects: %v", effects)
	}

	photo := sub.Get("Photo")
	if !strings.HasPrefix(photo, fakeURLPrefix) {
		t.Fatalf("photo not externalized: %q", photo)
	}
	if !strings.Contains(photo, "ab-123") {
		t.Fatalf("attachment key should carry the plate hint: %q", photo)
	}
	if sub.Get("Notes") != "left as-is" {
		t.Fatal("plain values must not be touched")
	}
	if len(fake.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(fake.objects))
	}
}

func TestExternalizeUploadFailureIsSideEffect(t *testing.T) {
	t.Parallel()

	fake := newFakeStorage()
	fake.failPut = true
	mapper := newTestMapper(store.NewMemoryStore(), fake)

	sub := NewSubmission(map[string]any{"Photo": pngDataURI})
	effects := mapper.Externalize(context.Background(), permissions.ResourceCleaningLog, sub)
	if len(effects) != 1 {
		t.Fatalf("expected one side effect, got %d", len(effects))
	}
	if sub.Get("Photo") != "" {
		t.Fatalf("failed upload must blank the field, got %q", sub.Get("Photo"))
	}
}

func TestIsDataURI(t *testing.T) {
	t.Parallel()

	if !IsDataURI(pngDataURI) {
		t.Fatal("expected data URI to be detected")
	}
	for _, v := range []string{"", "https://example.com/a.png", "data:image/png,nope"} {
		if IsDataURI(v) {
			t.Fatalf("false positive for %q", v)
		}
	}
}
