package uploadkey

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const prefix = "uploads"

// StorageKey addresses one blob in the object store. Keys are never reused:
// every call to New draws fresh randomness, so two uploads of the same file
// land under different keys.
type StorageKey struct {
	// ID is the random component of the key, also used as the upload
	// identifier in object metadata.
	ID        string
	CreatedAt time.Time
	Value     string
}

// New derives a storage key for the given client-supplied filename.
func New(originalFilename string) StorageKey {
	id := uuid.NewString()
	now := time.Now()
	return StorageKey{
		ID:        id,
		CreatedAt: now,
		Value:     fmt.Sprintf("%s/%s-%d-%s", prefix, id, now.UnixMilli(), Sanitize(originalFilename)),
	}
}

// Sanitize replaces every rune outside [A-Za-z0-9._-] with an underscore so
// the result is safe to embed in a storage key or store as a filename.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
