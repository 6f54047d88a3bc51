package http

import (
	"context"
	"net/http"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/logger"
	"github.com/NamanBalaji/mcfetch/internal/source"
	httpPkg "github.com/NamanBalaji/mcfetch/pkg/http"
)

// FileInfo is what a probe learns about a remote file.
type FileInfo struct {
	Size         int64
	Filename     string
	AcceptRanges bool
	LastModified time.Time
}

// Probe resolves the size of the file behind endpoints with a HEAD request,
// falling back to a one-byte ranged GET when HEAD is refused or carries no
// length. It retries and fails over exactly like a chunk transfer.
func (d *Downloader) Probe(ctx context.Context, endpoints source.Endpoints) (FileInfo, error) {
	var info FileInfo

	resource := endpoints.Official
	if resource == "" {
		resource = endpoints.Mirror
	}

	err := d.retry(ctx, endpoints, "probe "+resource, func(ctx context.Context, ep source.Endpoint) error {
		got, err := d.probeOnce(ctx, ep)
		if err != nil {
			return err
		}

		info = got

		return nil
	}, func(last error) error {
		e := errors.NewExhaustedError(last, resource, 0, 0)
		e.Range = ""

		return e
	})
	if err != nil {
		return FileInfo{}, err
	}

	logger.Debugf("Probed %s: size=%d ranges=%v", resource, info.Size, info.AcceptRanges)

	return info, nil
}

func (d *Downloader) probeOnce(ctx context.Context, ep source.Endpoint) (FileInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, d.connectTimeout)
	defer cancel()

	conn := &connection{client: d.client, endpoint: ep}

	resp, err := d.client.Head(ctx, ep.URL, d.headers)
	if err == nil {
		resp.Body.Close()

		if resp.ContentLength >= 0 {
			return FileInfo{
				Size:         resp.ContentLength,
				Filename:     httpPkg.GetFilename(resp),
				AcceptRanges: resp.Header.Get("Accept-Ranges") != "none",
				LastModified: httpPkg.ParseLastModified(resp.Header.Get("Last-Modified")),
			}, nil
		}

		err = httpPkg.ErrUnknownLength
	}

	if !httpPkg.IsFallbackError(err) {
		return FileInfo{}, conn.classify(ctx, err)
	}

	logger.Debugf("HEAD failed for %s, falling back to ranged GET: %v", ep.URL, err)

	resp, err = d.client.Range(ctx, ep.URL, 0, 0, d.headers)
	if err != nil {
		return FileInfo{}, conn.classify(ctx, err)
	}
	defer resp.Body.Close()

	info := FileInfo{
		Filename:     httpPkg.GetFilename(resp),
		LastModified: httpPkg.ParseLastModified(resp.Header.Get("Last-Modified")),
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		cr, err := httpPkg.ParseContentRange(resp.Header.Get("Content-Range"))
		if err == nil && cr.Size < 0 {
			err = httpPkg.ErrUnknownLength
		}

		if err != nil {
			return FileInfo{}, errors.NewSourceError(err, ep.Kind.String(), ep.URL, resp.StatusCode)
		}

		info.Size = cr.Size
		info.AcceptRanges = true
	default:
		if resp.ContentLength < 0 {
			return FileInfo{}, errors.NewSourceError(httpPkg.ErrUnknownLength, ep.Kind.String(), ep.URL, resp.StatusCode)
		}

		info.Size = resp.ContentLength
	}

	return info, nil
}
