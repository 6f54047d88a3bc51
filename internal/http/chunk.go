package http

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/NamanBalaji/mcfetch/internal/errors"
)

// Chunk is one independently fetched byte range [Start, End) of a file.
type Chunk struct {
	Index int
	Start int64
	End   int64

	written atomic.Int64
}

func newChunk(index int, start, end int64) *Chunk {
	return &Chunk{Index: index, Start: start, End: end}
}

// Len returns the number of bytes the chunk covers.
func (c *Chunk) Len() int64 {
	return c.End - c.Start
}

// Written returns the number of bytes already stored at the destination.
func (c *Chunk) Written() int64 {
	return c.written.Load()
}

func (c *Chunk) offset() int64 {
	return c.Start + c.written.Load()
}

func (c *Chunk) remaining() int64 {
	return c.Len() - c.written.Load()
}

// Range renders the chunk as a half-open interval.
func (c *Chunk) Range() string {
	return errors.FormatRange(c.Start, c.End)
}

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk %d %s", c.Index, c.Range())
}

// write stores p at the chunk's next offset, dropping anything past End.
func (c *Chunk) write(dst io.WriterAt, p []byte) (int, error) {
	if rem := c.remaining(); int64(len(p)) > rem {
		p = p[:rem]
	}

	if len(p) == 0 {
		return 0, nil
	}

	n, err := dst.WriteAt(p, c.offset())
	c.written.Add(int64(n))

	return n, err
}

// Partition splits [0, size) into download units. Files smaller than
// threshold become a single unit. Larger files, and files exactly at the
// threshold, are split into chunks ranges whose lengths differ by at most one
// byte; the trailing ranges carry the extra bytes. A range is never empty, so
// a file shorter than chunks gets one range per byte. A zero size yields no
// units.
func Partition(size, threshold int64, chunks int) []*Chunk {
	if size <= 0 {
		return nil
	}

	if size < threshold || chunks <= 1 {
		return []*Chunk{newChunk(0, 0, size)}
	}

	n := min(int64(chunks), size)
	base := size / n
	extra := size % n

	out := make([]*Chunk, 0, n)

	var start int64
	for i := int64(0); i < n; i++ {
		length := base
		if i >= n-extra {
			length++
		}

		out = append(out, newChunk(int(i), start, start+length))
		start += length
	}

	return out
}
