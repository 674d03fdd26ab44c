package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
	"github.com/dmitrymomot/acmegate/pkg/logger"
)

// RenewLockPrefix namespaces the single-flight cycle locks, keyed by
// account name.
const RenewLockPrefix = "acme:renew_lock:"

const defaultLockTTL = 30 * time.Second

// Issuer obtains fresh certificate material for a host. Implemented by
// acme.Client; faked in tests.
type Issuer interface {
	Issue(ctx context.Context, host string) (keyPEM, certPEM []byte, err error)
}

// Runner drives renewal cycles: it enumerates managed hosts sequentially,
// evaluates each one and issues, persists and reconciles as needed.
// Hosts are never renewed in parallel, keeping the cycle friendly to ACME
// rate limits.
type Runner struct {
	certs     certstore.Store
	books     *Bookkeeper
	locks     kv.Store
	issuer    Issuer
	log       *slog.Logger
	account   string
	threshold time.Duration
	lockTTL   time.Duration
	now       func() time.Time
}

// RunnerOption configures a Runner during initialization.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used by the runner.
func WithRunnerLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLockTTL overrides how long a crashed cycle keeps the single-flight
// lock before it self-heals.
func WithLockTTL(ttl time.Duration) RunnerOption {
	return func(r *Runner) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// NewRunner creates a Runner. The lock store is the shared key/value
// backend; accountName keys the single-flight lock so independent accounts
// can cycle concurrently.
func NewRunner(certs certstore.Store, locks kv.Store, issuer Issuer, accountName string, threshold time.Duration, opts ...RunnerOption) *Runner {
	r := &Runner{
		certs:     certs,
		books:     nil,
		locks:     locks,
		issuer:    issuer,
		log:       slog.Default(),
		account:   accountName,
		threshold: threshold,
		lockTTL:   defaultLockTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("renewal"), logger.Account(accountName))
	r.books = NewBookkeeper(locks, r.log)
	return r
}

// Bookkeeper exposes the runner's bookkeeper for callers that manage
// pending records directly.
func (r *Runner) Bookkeeper() *Bookkeeper {
	return r.books
}

// RunCycle walks all managed hosts once. A failure on one host never aborts
// the cycle for the others; per-host errors are aggregated into the return
// value. Only one cycle per account runs at a time: a concurrent call
// returns ErrCycleInProgress.
func (r *Runner) RunCycle(ctx context.Context) error {
	lockKey := RenewLockPrefix + r.account
	acquired, err := r.locks.SetNX(ctx, lockKey, []byte("1"), r.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !acquired {
		return ErrCycleInProgress
	}
	defer func() {
		// Release even when the cycle's context was canceled.
		if err := r.locks.Delete(context.WithoutCancel(ctx), lockKey); err != nil {
			r.log.Warn("failed to release cycle lock, waiting for ttl", logger.Error(err))
		}
	}()

	start := r.now()
	r.log.Info("starting renewal cycle")

	hosts, err := r.certs.Hosts(ctx)
	if err != nil {
		return fmt.Errorf("enumerate hosts: %w", err)
	}

	var errs []error
	renewed := 0
	for _, host := range hosts {
		// Cycles abort safely between host iterations only.
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		done, err := r.renewHost(ctx, host)
		if err != nil {
			r.log.Error("host renewal failed", logger.Host(host), logger.Error(err))
			errs = append(errs, fmt.Errorf("host %s: %w", host, err))
			continue
		}
		if done {
			renewed++
		}
	}

	// Sweep pending records whose certificates vanished out-of-band; such
	// hosts no longer appear in the enumeration above.
	if err := r.books.Reconcile(ctx, r.certs); err != nil {
		errs = append(errs, fmt.Errorf("reconcile: %w", err))
	}

	r.log.Info("renewal cycle finished",
		logger.Count("hosts", len(hosts)),
		logger.Count("renewed", renewed),
		logger.Count("failed", len(errs)),
		logger.Elapsed(start))
	return errors.Join(errs...)
}

// renewHost evaluates one host and acts on the decision. Returns true when
// a new certificate was issued and persisted.
func (r *Runner) renewHost(ctx context.Context, host string) (bool, error) {
	decision, err := Evaluate(ctx, r.certs, r.books, host, r.now(), r.threshold)
	if err != nil {
		return false, err
	}

	switch {
	case decision.DueForRenewal:
		r.log.Info("certificate due for renewal",
			logger.Host(host), logger.ExpiresAt(decision.ExpiresAt))

		if err := r.books.MarkPending(ctx, host, decision.ExpiresAt); err != nil {
			return false, err
		}
		keyPEM, certPEM, err := r.issuer.Issue(ctx, host)
		if err != nil {
			return false, err
		}
		if err := r.certs.Save(ctx, host, keyPEM, certPEM); err != nil {
			return false, err
		}
		if err := r.books.Clear(ctx, host); err != nil {
			return false, err
		}
		return true, nil

	case decision.ShouldCleanup:
		r.log.Info("removing stale renew entry", logger.Host(host))
		return false, r.books.Clear(ctx, host)
	}

	return false, nil
}
