package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/notify"
	"github.com/expiryguard/expiryguard/internal/reconcile"
)

// SecretStore is the persistence surface the HTTP handlers need. Both
// the Redis and the in-memory store satisfy it.
type SecretStore interface {
	Save(ctx context.Context, secret *domain.Secret) error
	Get(ctx context.Context, id string) (*domain.Secret, error)
	List(ctx context.Context) ([]*domain.Secret, error)
}

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time   // for testing, defaults to time.Now
	AllowedHosts      []string           // Host headers allowed to access the server
	AllowedCIDRS      []string           // IPs allowed to access restricted endpoints
	TrustProxy        bool               // true if running behind a trusted reverse proxy
	RedisClient       *redis.Client      // Redis client connection (nil when running on memory)
	Store             SecretStore        // Secret persistence
	Dispatcher        *notify.Dispatcher // Notification fan-out
	Job               *reconcile.Job     // Reconciliation job (status source)
	RunTrigger        chan struct{}      // Channel to trigger a manual reconciliation run
	SeedReloadTrigger chan struct{}      // Channel to trigger a manual seed re-import (nil if seeding disabled)
	ScheduleCron      string             // Cron expression reported by /infra
	ScheduleTZ        string             // Schedule timezone reported by /infra
}

// Now returns TimeNow() when set, time.Now otherwise.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
