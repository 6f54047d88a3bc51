package http

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/source"
	httpPkg "github.com/NamanBalaji/mcfetch/pkg/http"
)

const bufferSize = 32 * 1024

var (
	errReadStall  = stdErrors.New("no data received within read timeout")
	errShortBody  = stdErrors.New("body ended before range was complete")
	errNoProgress = stdErrors.New("response carried no data for range")

	errRangeMismatch = stdErrors.New("partial response does not start at requested offset")
)

// connection performs one ranged transfer attempt for a chunk.
type connection struct {
	client      *httpPkg.Client
	headers     map[string]string
	endpoint    source.Endpoint
	chunk       *Chunk
	readTimeout time.Duration
}

// transfer requests the chunk's unwritten bytes and writes them to dst at
// their absolute offset. onWrite is called with every stored byte count. The
// body is abandoned when no byte arrives for readTimeout.
func (c *connection) transfer(ctx context.Context, dst io.WriterAt, onWrite func(int)) error {
	if c.chunk.remaining() == 0 {
		return nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	start := c.chunk.offset()

	resp, err := c.client.Range(ctx, c.endpoint.URL, start, c.chunk.End-1, c.headers)
	if err != nil {
		return c.classify(ctx, err)
	}
	defer resp.Body.Close()

	var skip int64
	switch resp.StatusCode {
	case http.StatusOK:
		skip = start
	case http.StatusPartialContent:
		if err := c.checkRange(resp, start); err != nil {
			return err
		}
	}

	stall := time.AfterFunc(c.readTimeout, func() { cancel(errReadStall) })
	defer stall.Stop()

	before := c.chunk.Written()
	buf := make([]byte, bufferSize)

	for c.chunk.remaining() > 0 {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			stall.Reset(c.readTimeout)

			p := buf[:n]
			if skip > 0 {
				drop := min(skip, int64(len(p)))
				p = p[drop:]
				skip -= drop
			}

			written, werr := c.chunk.write(dst, p)
			if written > 0 {
				onWrite(written)
			}

			if werr != nil {
				return errors.NewIOError(werr, fileName(dst))
			}
		}

		if rerr == nil {
			continue
		}

		if c.chunk.remaining() == 0 {
			break
		}

		if stdErrors.Is(rerr, io.EOF) {
			if c.chunk.Written() == before {
				return errors.NewSourceError(errNoProgress, c.endpoint.Kind.String(), c.endpoint.URL, resp.StatusCode)
			}

			return errors.NewSourceError(errShortBody, c.endpoint.Kind.String(), c.endpoint.URL, resp.StatusCode)
		}

		return c.classify(ctx, rerr)
	}

	return nil
}

// checkRange rejects a partial response whose Content-Range is missing or
// does not begin at start.
func (c *connection) checkRange(resp *http.Response, start int64) error {
	cr, err := httpPkg.ParseContentRange(resp.Header.Get("Content-Range"))
	if err == nil && cr.Start != start {
		err = fmt.Errorf("%w: got %d, want %d", errRangeMismatch, cr.Start, start)
	}

	if err != nil {
		return errors.NewSourceError(err, c.endpoint.Kind.String(), c.endpoint.URL, resp.StatusCode)
	}

	return nil
}

// classify maps a transport failure of this attempt onto the error taxonomy.
// Cancellation of the parent context is returned untouched.
func (c *connection) classify(ctx context.Context, err error) error {
	src := c.endpoint.Kind.String()

	if cause := context.Cause(ctx); stdErrors.Is(cause, errReadStall) {
		return errors.NewTimeoutError(errReadStall, src, c.endpoint.URL)
	}

	if stdErrors.Is(err, context.Canceled) {
		return err
	}

	if stdErrors.Is(err, httpPkg.ErrTimeout) {
		return errors.NewTimeoutError(err, src, c.endpoint.URL)
	}

	return errors.NewSourceError(err, src, c.endpoint.URL, httpPkg.StatusCode(err))
}

func fileName(w io.WriterAt) string {
	if f, ok := w.(*os.File); ok {
		return f.Name()
	}

	return "destination"
}
