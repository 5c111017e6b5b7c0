// Package storage persists the users and messages collections.
//
// A collection is an ordered list of records stored as one versioned document.
// Every backend offers the same primitives: whole-collection read, whole-collection
// replace and a serialized read-modify-write (UpdateCollection). Writers to the same
// collection are serialized; readers never block on writers.
package storage

import (
	"bytes"
	"dm-lab/errors"
	"encoding/json"
	"fmt"
	"sync"
)

type Collection string

const (
	Users    Collection = "users"
	Messages Collection = "messages"
)

// SchemaVersion is the envelope version written by this package.
// Version 0 is the legacy layout: a bare JSON array without envelope.
const SchemaVersion = 1

// Collections lists every collection EnsureReady must create.
var Collections = []Collection{Users, Messages}

// UpdateFunc receives the current records and returns the records to persist.
// Returning an error aborts the update and leaves the collection untouched.
type UpdateFunc func(records []json.RawMessage) ([]json.RawMessage, error)

type Store interface {
	// EnsureReady creates the backing location and any missing empty collection.
	// It is idempotent and never truncates existing data.
	EnsureReady() error
	ReadCollection(c Collection) ([]json.RawMessage, error)
	WriteCollection(c Collection, records []json.RawMessage) error
	UpdateCollection(c Collection, fn UpdateFunc) error
	Close() error
}

type Options struct {
	// DegradedReads makes ReadCollection log failures and return an empty
	// collection instead of ErrStorageRead. It covers the document as a whole:
	// a readable document holding a record that does not decode into the
	// caller's type still fails Load with ErrStorageRead. UpdateCollection
	// ignores it: an unreadable collection is never overwritten.
	DegradedReads bool
}

type document struct {
	Version int               `json:"version"`
	Records []json.RawMessage `json:"records"`
}

func validate(c Collection) error {
	for _, known := range Collections {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", errors.ErrUnknownCollection, c)
}

func decodeDocument(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if trimmed[0] == '[' {
		var legacy []json.RawMessage
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, err
		}
		return nonNil(legacy), nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", errors.ErrUnsupportedSchema, doc.Version)
	}
	return nonNil(doc.Records), nil
}

func encodeDocument(records []json.RawMessage) ([]byte, error) {
	return json.MarshalIndent(document{Version: SchemaVersion, Records: nonNil(records)}, "", "  ")
}

func nonNil(records []json.RawMessage) []json.RawMessage {
	if records == nil {
		return []json.RawMessage{}
	}
	return records
}

func newLocks() map[Collection]*sync.Mutex {
	locks := make(map[Collection]*sync.Mutex, len(Collections))
	for _, c := range Collections {
		locks[c] = &sync.Mutex{}
	}
	return locks
}
