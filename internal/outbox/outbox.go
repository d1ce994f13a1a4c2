// Package outbox keeps payloads that could not be submitted so they can be
// sent later.
package outbox

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gerunddev/text2tana/internal/payload"
)

// ErrDuplicate is returned when an identical payload is already queued
var ErrDuplicate = errors.New("payload already queued")

// Entry is one queued payload
type Entry struct {
	ID        string          `json:"id"`
	Hash      string          `json:"hash"`
	Text      string          `json:"text,omitempty"`
	Payload   payload.Payload `json:"payload"`
	QueuedAt  time.Time       `json:"queued_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

// Outbox is the list of queued payloads, oldest first
type Outbox struct {
	Entries []*Entry `json:"entries"`
}

// New creates an empty outbox
func New() *Outbox {
	return &Outbox{Entries: make([]*Entry, 0)}
}

// Load reads the outbox file. A missing file yields an empty outbox.
func Load(path string) (*Outbox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}

	var ob Outbox
	if err := json.Unmarshal(data, &ob); err != nil {
		return nil, fmt.Errorf("failed to parse outbox: %w", err)
	}
	if ob.Entries == nil {
		ob.Entries = make([]*Entry, 0)
	}

	return &ob, nil
}

// Save writes the outbox file
func (o *Outbox) Save(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create outbox directory: %w", err)
	}

	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outbox: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write outbox file: %w", err)
	}

	return nil
}

// ComputeHash computes the SHA256 hash of a payload's wire form
func ComputeHash(p payload.Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data)), nil
}

// Add queues p. Queuing a payload identical to one already queued returns
// the existing entry and ErrDuplicate.
func (o *Outbox) Add(text string, p payload.Payload, cause error) (*Entry, error) {
	hash, err := ComputeHash(p)
	if err != nil {
		return nil, fmt.Errorf("failed to hash payload: %w", err)
	}

	for _, e := range o.Entries {
		if e.Hash == hash {
			return e, ErrDuplicate
		}
	}

	e := &Entry{
		ID:       uuid.New().String(),
		Hash:     hash,
		Text:     text,
		Payload:  p,
		QueuedAt: time.Now().UTC(),
	}
	if cause != nil {
		e.LastError = cause.Error()
	}
	o.Entries = append(o.Entries, e)

	return e, nil
}

// Remove drops the entry with the given ID
func (o *Outbox) Remove(id string) bool {
	for i, e := range o.Entries {
		if e.ID == id {
			o.Entries = append(o.Entries[:i], o.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued entries
func (o *Outbox) Len() int {
	return len(o.Entries)
}

// SubmitFunc sends one payload
type SubmitFunc func(ctx context.Context, p payload.Payload) error

// FlushResult summarizes one Flush
type FlushResult struct {
	Sent   []string
	Failed map[string]error
}

// Flush submits every entry in order. Sent entries are removed; failed
// ones stay queued with their attempt count and last error updated. Flush
// stops early, keeping the remaining entries, when ctx is done.
func (o *Outbox) Flush(ctx context.Context, submit SubmitFunc) (*FlushResult, error) {
	result := &FlushResult{Failed: make(map[string]error)}

	remaining := make([]*Entry, 0, len(o.Entries))
	for i, e := range o.Entries {
		if err := ctx.Err(); err != nil {
			remaining = append(remaining, o.Entries[i:]...)
			o.Entries = remaining
			return result, err
		}

		e.Attempts++
		if err := submit(ctx, e.Payload); err != nil {
			e.LastError = err.Error()
			result.Failed[e.ID] = err
			remaining = append(remaining, e)
			continue
		}
		result.Sent = append(result.Sent, e.ID)
	}
	o.Entries = remaining

	return result, nil
}
