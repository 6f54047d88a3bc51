package http

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/mcfetch/internal/config"
	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/logger"
	"github.com/NamanBalaji/mcfetch/internal/metrics"
	"github.com/NamanBalaji/mcfetch/internal/pool"
	"github.com/NamanBalaji/mcfetch/internal/progress"
	"github.com/NamanBalaji/mcfetch/internal/source"
	httpPkg "github.com/NamanBalaji/mcfetch/pkg/http"
)

// Downloader fetches files in byte ranges over a shared pool. A Downloader is
// safe for concurrent use; every Download call owns its own chunks.
type Downloader struct {
	cfg            *config.DownloadConfig
	pool           *pool.Pool
	client         *httpPkg.Client
	headers        map[string]string
	connectTimeout time.Duration
	readTimeout    time.Duration
	retryDelay     time.Duration
}

func NewDownloader(cfg *config.DownloadConfig, p *pool.Pool, opts ...Option) *Downloader {
	d := &Downloader{
		cfg:            cfg,
		pool:           p,
		connectTimeout: cfg.ConnectTimeoutDuration(),
		readTimeout:    cfg.ReadTimeoutDuration(),
		retryDelay:     cfg.RetryDelay,
	}

	d.client = httpPkg.NewClient(d.connectTimeout)

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Download fetches the file described by info into path. The destination is
// created and sized up front, then every unit is written at its own offset.
// Bytes are reported to tracker as they are stored. The first unit that runs
// out of attempts cancels the rest; bytes already written stay on disk.
func (d *Downloader) Download(ctx context.Context, endpoints source.Endpoints, path string, info FileInfo, tracker *progress.Tracker) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError(err, path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewIOError(err, path)
	}

	if err := f.Truncate(info.Size); err != nil {
		f.Close()
		return errors.NewIOError(err, path)
	}

	err = d.fetch(ctx, endpoints, f, info, tracker)

	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.NewIOError(cerr, path)
	}

	if err != nil {
		return err
	}

	if !info.LastModified.IsZero() {
		if err := os.Chtimes(path, info.LastModified, info.LastModified); err != nil {
			logger.Warnf("Failed to set modification time on %s: %v", path, err)
		}
	}

	return nil
}

func (d *Downloader) fetch(ctx context.Context, endpoints source.Endpoints, f *os.File, info FileInfo, tracker *progress.Tracker) error {
	chunks := d.plan(info)
	if len(chunks) == 0 {
		return nil
	}

	logger.Debugf("Downloading %s (%d bytes) in %d units", f.Name(), info.Size, len(chunks))

	onWrite := func(n int) {
		if tracker != nil {
			tracker.Add(uint64(n))
		}

		metrics.BytesDownloaded.Add(float64(n))
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			return d.fetchChunk(gctx, endpoints, f, c, onWrite)
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		return errors.NewContextError(ctx.Err(), f.Name())
	}

	return err
}

func (d *Downloader) plan(info FileInfo) []*Chunk {
	if !info.AcceptRanges {
		return Partition(info.Size, 0, 1)
	}

	return Partition(info.Size, d.cfg.LargeFileThreshold, d.cfg.LargeFileChunks)
}

func (d *Downloader) fetchChunk(ctx context.Context, endpoints source.Endpoints, f *os.File, c *Chunk, onWrite func(int)) error {
	name := filepath.Base(f.Name())

	return d.retry(ctx, endpoints, name+" "+c.String(), func(ctx context.Context, ep source.Endpoint) error {
		conn := &connection{
			client:      d.client,
			headers:     d.headers,
			endpoint:    ep,
			chunk:       c,
			readTimeout: d.readTimeout,
		}

		return conn.transfer(ctx, f, onWrite)
	}, func(last error) error {
		return errors.NewExhaustedError(last, name, c.Start, c.End)
	})
}

// retry runs attempt against the source chosen by a fresh selector until it
// succeeds, the selector gives up, or ctx ends. Each attempt holds one pool
// slot; the slot is released before any backoff delay. Switching source does
// not wait. Errors that are not retryable end the loop at once.
func (d *Downloader) retry(
	ctx context.Context,
	endpoints source.Endpoints,
	label string,
	attempt func(context.Context, source.Endpoint) error,
	exhausted func(last error) error,
) error {
	sel, err := source.NewSelector(d.cfg.Strategy, d.cfg.MaxRetries, endpoints)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	for {
		ep := endpoints.Get(sel.Current())

		release, err := d.pool.Acquire(ctx)
		if err != nil {
			return errors.NewContextError(err, label)
		}

		err = attempt(ctx, ep)

		release()

		if err == nil {
			metrics.ChunkAttempts.WithLabelValues(ep.Kind.String(), metrics.OutcomeSuccess).Inc()
			return nil
		}

		if ctx.Err() != nil {
			return errors.NewContextError(ctx.Err(), label)
		}

		metrics.ChunkAttempts.WithLabelValues(ep.Kind.String(), metrics.OutcomeFailure).Inc()

		if !errors.IsRetryable(err) {
			logger.Errorf("%s failed on %s: %v", label, ep.Kind, err)
			return err
		}

		next, switched, ok := sel.Fail()
		if !ok {
			logger.Errorf("%s exhausted retries on %s: %v", label, ep.Kind, err)
			return exhausted(err)
		}

		if switched {
			metrics.Failovers.Inc()
			logger.Warnf("%s switching to %s after %d failures: %v", label, next, sel.Budget(), err)

			continue
		}

		logger.L().Debug().
			Str("unit", label).
			Str("source", ep.Kind.String()).
			Int("attempt", sel.Attempts()).
			Err(err).
			Msg("retrying")

		if err := sleep(ctx, jitterDelay(d.retryDelay)); err != nil {
			return errors.NewContextError(err, label)
		}
	}
}
