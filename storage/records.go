package storage

import (
	"dm-lab/errors"
	"encoding/json"
	"fmt"
)

// Load reads a collection and decodes every record into T.
func Load[T any](s Store, c Collection) ([]T, error) {
	raw, err := s.ReadCollection(c)
	if err != nil {
		return nil, err
	}
	return decodeRecords[T](c, raw)
}

// Modify runs fn over the typed records of c under the collection writer lock
// and persists whatever fn returns. Errors returned by fn are passed through untouched.
func Modify[T any](s Store, c Collection, fn func(records []T) ([]T, error)) error {
	return s.UpdateCollection(c, func(raw []json.RawMessage) ([]json.RawMessage, error) {
		records, err := decodeRecords[T](c, raw)
		if err != nil {
			return nil, err
		}
		next, err := fn(records)
		if err != nil {
			return nil, err
		}
		return encodeRecords(c, next)
	})
}

func decodeRecords[T any](c Collection, raw []json.RawMessage) ([]T, error) {
	records := make([]T, 0, len(raw))
	for i, r := range raw {
		var record T
		if err := json.Unmarshal(r, &record); err != nil {
			return nil, fmt.Errorf("%w: %s record %d: %w", errors.ErrStorageRead, c, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func encodeRecords[T any](c Collection, records []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(records))
	for i, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s record %d: %w", errors.ErrStorageWrite, c, i, err)
		}
		raw = append(raw, b)
	}
	return raw, nil
}
