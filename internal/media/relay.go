package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrRelayFailed wraps any upload failure reported by the media host.
	ErrRelayFailed = errors.New("image relay failed")
	// ErrRelayTimeout is returned when a batch does not finish before its deadline.
	ErrRelayTimeout = errors.New("image relay timed out")
)

// DefaultTimeout bounds one relay batch when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// File is one uploaded image held in memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Host is an external image host that accepts data URIs and returns a durable URL.
type Host interface {
	Name() string
	Upload(ctx context.Context, dataURI string) (string, error)
}

// Remover is implemented by hosts that can delete a previously returned URL.
type Remover interface {
	Remove(ctx context.Context, url string) error
}

// Checker is implemented by hosts that can report readiness.
type Checker interface {
	Ready(ctx context.Context) error
}

// Relay forwards uploaded files to a Host.
type Relay struct {
	host    Host
	timeout time.Duration
}

func NewRelay(host Host, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Relay{host: host, timeout: timeout}
}

// Host returns the underlying media host.
func (r *Relay) Host() Host { return r.host }

// RelayAll uploads every file concurrently and returns their URLs in input
// order. It is all-or-nothing: the first failure cancels the remaining
// uploads, images already hosted by this batch are removed best-effort, and
// the error is returned.
func (r *Relay) RelayAll(ctx context.Context, files []File) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	bctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(bctx)
	for i, f := range files {
		g.Go(func() error {
			u, err := r.upload(gctx, f)
			if err != nil {
				return fmt.Errorf("upload %q: %w", f.Filename, err)
			}
			urls[i] = u
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return urls, nil
	}

	r.Discard(ctx, urls)
	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("relay canceled: %w", ctx.Err())
	case errors.Is(bctx.Err(), context.DeadlineExceeded):
		logger.Warnf("media relay: batch of %d exceeded %s on %s", len(files), r.timeout, r.host.Name())
		return nil, ErrRelayTimeout
	default:
		logger.Errorf("media relay: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
}

func (r *Relay) upload(ctx context.Context, f File) (string, error) {
	start := time.Now()
	u, err := r.host.Upload(ctx, EncodeDataURI(f.ContentType, f.Data))
	metrics.MediaRelayLatency.WithLabelValues(r.host.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MediaRelayed.WithLabelValues(r.host.Name(), "error").Inc()
		return "", err
	}
	metrics.MediaRelayed.WithLabelValues(r.host.Name(), "ok").Inc()
	return u, nil
}

// Discard removes hosted images best-effort. Failures are logged only; empty
// entries are skipped. It is a no-op for hosts without Remover.
func (r *Relay) Discard(ctx context.Context, urls []string) {
	rm, ok := r.host.(Remover)
	if !ok {
		return
	}
	// runs even when the request context is already done
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(4)
	for _, u := range urls {
		if u == "" {
			continue
		}
		g.Go(func() error {
			if err := rm.Remove(dctx, u); err != nil {
				logger.Warnf("media relay: could not remove %s from %s: %v", u, r.host.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
