package seedfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expiryguard/expiryguard/internal/domain"
)

const dateLayout = "2006-01-02"

// Mapper converts seed entries to domain.Secret entities
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapSecrets converts a parsed seed file to []*domain.Secret. Entries
// missing a name, owner, or a parseable expiry date are skipped. Each
// mapped secret gets a fresh uuid; matching against already-imported
// entries is the importer's job.
func (m *Mapper) MapSecrets(f File) ([]*domain.Secret, error) {
	var secrets []*domain.Secret
	now := time.Now().UTC()

	for _, entry := range f.Secrets {
		name := strings.TrimSpace(entry.Name)
		owner := strings.TrimSpace(entry.OwnerEmail)
		if name == "" || owner == "" {
			continue
		}

		expiry, err := time.ParseInLocation(dateLayout, strings.TrimSpace(entry.ExpiryDate), time.UTC)
		if err != nil {
			continue
		}

		secrets = append(secrets, &domain.Secret{
			ID:         uuid.NewString(),
			OwnerEmail: owner,
			Name:       name,
			ExpiryDate: expiry,
			Notes:      entry.Notes,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if len(secrets) == 0 {
		return nil, fmt.Errorf("no valid secrets found in seed file")
	}

	return secrets, nil
}

// Fingerprint identifies a seeded secret across imports. Seed entries
// carry no ID, so owner plus name is the stable handle.
func Fingerprint(owner, name string) string {
	return strings.ToLower(strings.TrimSpace(owner)) + "|" + strings.ToLower(strings.TrimSpace(name))
}
