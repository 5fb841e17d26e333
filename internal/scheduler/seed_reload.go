package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/sources/seedfile"
)

// SeedStore is the slice of the secret store the reloader needs.
type SeedStore interface {
	List(ctx context.Context) ([]*domain.Secret, error)
	Save(ctx context.Context, secret *domain.Secret) error
}

// SeedReloader handles periodic reloading of the secrets seed file.
// Entries already imported keep their stored state (including
// notification history); only unseen owner/name pairs are created.
type SeedReloader struct {
	loader        *seedfile.Loader
	mapper        *seedfile.Mapper
	store         SeedStore
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a new seed file reloader
func NewSeedReloader(
	seedFile string,
	store SeedStore,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seedfile.NewLoader(seedFile),
		mapper:        seedfile.NewMapper(),
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (sr *SeedReloader) Start(ctx context.Context) error {
	// Import immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed import failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload parses the seed file and imports entries not yet in the store.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading secrets seed file")

	f, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	seeded, err := sr.mapper.MapSecrets(f)
	if err != nil {
		return fmt.Errorf("failed to map seed entries: %w", err)
	}

	existing, err := sr.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored secrets: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[seedfile.Fingerprint(s.OwnerEmail, s.Name)] = true
	}

	imported := 0
	for _, s := range seeded {
		if known[seedfile.Fingerprint(s.OwnerEmail, s.Name)] {
			continue
		}
		if err := sr.store.Save(ctx, s); err != nil {
			sr.logger.Warn("failed to import seeded secret",
				logger.String("name", s.Name),
				logger.Error(err))
			continue
		}
		imported++
	}

	sr.logger.Info("seed import complete",
		logger.Int("seeded", len(seeded)),
		logger.Int("imported", imported))

	return nil
}
