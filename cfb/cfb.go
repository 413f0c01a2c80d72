// Package cfb gives the decoding pipeline access to the named streams of a
// compound-document container. The container format itself is handled by
// github.com/richardlehane/mscfb; this package only loads stream bytes and
// answers existence queries.
package cfb

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Well-known stream names in a schematic document.
const (
	StreamFileHeader = "FileHeader"
	StreamStorage    = "Storage"
	StreamAdditional = "Additional"
)

var ErrNoStream = errors.New("stream not present in container")

// Container holds the fully loaded streams of one compound document.
type Container struct {
	names   []string
	streams map[string][]byte
}

// Open reads every stream of the compound document into memory.
// Schematic files are small; loading up front keeps the framer a pure
// byte-slice consumer.
func Open(r io.ReaderAt) (*Container, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	c := &Container{streams: make(map[string][]byte)}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.FileInfo().IsDir() {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read stream %q: %w", entry.Name, err)
		}
		name := entry.Name
		if _, dup := c.streams[name]; !dup {
			c.names = append(c.names, name)
		}
		c.streams[name] = data
	}
	return c, nil
}

// NewContainer wraps already-extracted streams, preserving map iteration
// independence by sorting the names. Callers that framed their own streams
// (or tests) can feed the decode pipeline without a compound document.
func NewContainer(streams map[string][]byte) *Container {
	c := &Container{streams: make(map[string][]byte, len(streams))}
	for name, data := range streams {
		c.names = append(c.names, name)
		c.streams[name] = data
	}
	sort.Strings(c.names)
	return c
}

// Streams lists the stream names in directory order.
func (c *Container) Streams() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Container) Has(name string) bool {
	_, ok := c.streams[name]
	return ok
}

// Read returns the bytes of the named stream, or ErrNoStream.
func (c *Container) Read(name string) ([]byte, error) {
	data, ok := c.streams[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNoStream)
	}
	return data, nil
}

// IsSchematic reports whether the container looks like a schematic document
// (it must at least carry a FileHeader stream).
func (c *Container) IsSchematic() bool {
	return c.Has(StreamFileHeader)
}

// String lists the stream names, for diagnostics.
func (c *Container) String() string {
	return strings.Join(c.names, ", ")
}
