package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/types"
)

// Load returns the stored document, or the empty default when nothing is
// stored. Stored fields are merged over the default so fields missing from an
// older save keep their defaults. Unreadable or malformed data is logged and
// the default is returned; Load never fails.
func Load(ctx context.Context, store Store, key string) types.ResumeDocument {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return document.New()
	}
	if err != nil {
		log.Printf("[STORAGE] failed to read %q, starting from an empty document: %v", key, err)
		return document.New()
	}
	return Decode(data)
}

// Decode parses a saved document over the default. Malformed input yields the default.
func Decode(data []byte) types.ResumeDocument {
	doc := document.New()
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[STORAGE] failed to parse saved document, starting from an empty document: %v", err)
		return document.New()
	}
	return document.Normalize(doc)
}

// Encode serializes doc in the persisted shape.
func Encode(doc types.ResumeDocument) ([]byte, error) {
	return json.Marshal(document.Normalize(doc))
}
