package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const DefaultCertificatePrefix = "ET"

// FormatSequenceNumber renders a sequence value as PREFIX-00000042.
func FormatSequenceNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s-%08d", prefixOrDefault(prefix), value)
}

// UUIDGenerator derives numbers from random v4 UUIDs. It needs no shared
// state, so it is the fallback when neither Postgres nor Redis should own the
// sequence.
type UUIDGenerator struct {
	prefix string
}

func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefixOrDefault(prefix)}
}

func (g *UUIDGenerator) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	// All 32 hex digits, so collisions stay as unlikely as the UUID itself.
	hex := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("%s-%s", g.prefix, strings.ToUpper(hex)), nil
}

func prefixOrDefault(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultCertificatePrefix
	}
	return prefix
}
