package outbox

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/schema"
)

func convert(text string) payload.Payload {
	return payload.Convert(text, schema.DefaultSchema(), schema.DefaultSettings())
}

func TestNew(t *testing.T) {
	o := New()

	if o.Entries == nil {
		t.Error("Entries should be initialized")
	}
	if o.Len() != 0 {
		t.Error("Outbox should be empty")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "outbox.json")

	o := New()
	if _, err := o.Add("@library read", convert("@library read"), errors.New("offline")); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err := o.Add("due:inbox write", convert("due:inbox write"), nil); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if err := o.Save(path); err != nil {
		t.Fatalf("Failed to save outbox: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load outbox: %v", err)
	}

	if diff := cmp.Diff(o, loaded); diff != "" {
		t.Errorf("Loaded outbox mismatch (-want +got):\n%s", diff)
	}
	if loaded.Entries[0].LastError != "offline" {
		t.Errorf("Expected last error to survive, got %q", loaded.Entries[0].LastError)
	}
}

func TestLoadNonExistent(t *testing.T) {
	o, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if o.Len() != 0 {
		t.Errorf("Expected empty outbox, got %d entries", o.Len())
	}
}

func TestAddDuplicate(t *testing.T) {
	o := New()

	first, err := o.Add("note", convert("note"), nil)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if !strings.HasPrefix(first.Hash, "sha256:") {
		t.Errorf("Unexpected hash format %q", first.Hash)
	}

	again, err := o.Add("note", convert("note"), nil)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("Expected existing entry to be returned")
	}
	if o.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", o.Len())
	}
}

func TestRemove(t *testing.T) {
	o := New()
	e, _ := o.Add("note", convert("note"), nil)

	if !o.Remove(e.ID) {
		t.Error("Remove() should find the entry")
	}
	if o.Remove(e.ID) {
		t.Error("Remove() should not find the entry twice")
	}
}

func TestFlush(t *testing.T) {
	o := New()
	a, _ := o.Add("a", convert("a"), nil)
	b, _ := o.Add("b", convert("b"), nil)
	c, _ := o.Add("c", convert("c"), nil)

	var sent []string
	submit := func(ctx context.Context, p payload.Payload) error {
		name := p.Nodes[0].Name
		if name == "b" {
			return errors.New("rejected")
		}
		sent = append(sent, name)
		return nil
	}

	result, err := o.Flush(context.Background(), submit)
	if err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "c"}, sent); diff != "" {
		t.Errorf("Submission order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{a.ID, c.ID}, result.Sent); diff != "" {
		t.Errorf("Sent IDs mismatch (-want +got):\n%s", diff)
	}
	if _, ok := result.Failed[b.ID]; !ok {
		t.Errorf("Expected %s to be reported as failed", b.ID)
	}

	if o.Len() != 1 || o.Entries[0].ID != b.ID {
		t.Fatalf("Expected only the failed entry to remain, got %d entries", o.Len())
	}
	if o.Entries[0].Attempts != 1 || o.Entries[0].LastError != "rejected" {
		t.Errorf("Unexpected failed entry state: %+v", o.Entries[0])
	}
}

func TestFlushCanceled(t *testing.T) {
	o := New()
	o.Add("a", convert("a"), nil)
	o.Add("b", convert("b"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	submit := func(ctx context.Context, p payload.Payload) error {
		cancel()
		return nil
	}

	result, err := o.Flush(ctx, submit)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(result.Sent) != 1 {
		t.Errorf("Expected 1 sent entry, got %d", len(result.Sent))
	}
	if o.Len() != 1 || o.Entries[0].Text != "b" {
		t.Errorf("Expected the unsent entry to remain queued")
	}
}
