package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is the folder every generated image is stored under.
const KeyPrefix = "generated_images/"

const keyTimeLayout = "20060102_150405"

// KeyGenerator builds object keys of the form
// generated_images/{prefix}{yyyyMMdd_HHmmss}_{8 hex}_{index}.{ext}.
// Uniqueness relies on the random suffix; collisions are unlikely, not impossible.
type KeyGenerator struct {
	Now    func() time.Time
	Random func() string
}

// NewKeyGenerator returns a generator backed by the wall clock and random UUIDs.
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{Now: time.Now, Random: RandomHex}
}

// Key returns the object key for the index-th (1-based) image of a call.
func (g *KeyGenerator) Key(prefix string, index int, ext string) string {
	now := time.Now
	random := RandomHex
	if g != nil && g.Now != nil {
		now = g.Now
	}
	if g != nil && g.Random != nil {
		random = g.Random
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s%s%s_%s_%d.%s", KeyPrefix, prefix, now().Format(keyTimeLayout), random(), index, ext)
}

// RandomHex returns eight lowercase hex characters taken from a random UUID.
func RandomHex() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
