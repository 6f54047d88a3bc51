package task

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/mcfetch/internal/config"
	mchttp "github.com/NamanBalaji/mcfetch/internal/http"
	"github.com/NamanBalaji/mcfetch/internal/logger"
)

const KindClient = "client"

var (
	ErrUnsafePath    = errors.New("file path escapes destination")
	ErrDuplicatePath = errors.New("more than one file targets the same path")
)

// Client downloads every file of a game version into a destination root.
type Client struct {
	Base

	version  string
	label    string
	destDir  string
	cfg      *config.DownloadConfig
	resolver Resolver
	opts     []mchttp.Option
}

// NewClient builds a client-download task. An empty label is replaced by a
// name derived from the version. opts are passed to the downloader.
func NewClient(version, label, destDir string, cfg *config.DownloadConfig, resolver Resolver, opts ...mchttp.Option) *Client {
	if label == "" {
		label = fmt.Sprintf("Download %s client", version)
	}

	return &Client{
		version:  version,
		label:    label,
		destDir:  destDir,
		cfg:      cfg,
		resolver: resolver,
		opts:     opts,
	}
}

func (c *Client) Kind() string { return KindClient }

func (c *Client) Name() string { return c.label }

func (c *Client) Version() string { return c.version }

// Run resolves the version's files and probes all of them, so the task total
// is known and stored once before any byte is transferred. The files are then
// downloaded concurrently over the shared pool.
func (c *Client) Run(ctx context.Context, env Env) error {
	files, err := c.resolver.Resolve(ctx, c.version)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", c.version, err)
	}

	if len(files) == 0 {
		return fmt.Errorf("resolve %s: %w", c.version, ErrNoFiles)
	}

	d := mchttp.NewDownloader(c.cfg, env.Pool, c.opts...)

	infos := make([]mchttp.FileInfo, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			info, err := d.Probe(gctx, f.Endpoints)
			if err != nil {
				return err
			}

			infos[i] = info

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	paths := make([]string, len(files))
	seen := make(map[string]struct{}, len(files))

	var total uint64

	for i, f := range files {
		p, err := c.target(f, infos[i])
		if err != nil {
			return err
		}

		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, p)
		}
		seen[p] = struct{}{}

		paths[i] = p
		total += uint64(infos[i].Size)
	}

	env.Progress.SetTotal(total)
	logger.Infof("%s: %d files, %d bytes", c.label, len(files), total)

	g, gctx = errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			return d.Download(gctx, f.Endpoints, paths[i], infos[i], env.Progress)
		})
	}

	return g.Wait()
}

func (c *Client) target(f File, info mchttp.FileInfo) (string, error) {
	rel := f.Path
	if rel == "" {
		rel = info.Filename
	}

	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, f.Path)
	}

	return filepath.Join(c.destDir, rel), nil
}
