// Package scanner splits a container stream into its framed records.
package scanner

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"schlib/recovery"
)

var (
	ErrTruncatedRecord   = errors.New("record extends past end of stream")
	ErrUnexpectedSubtype = errors.New("unexpected record subtype")
	ErrMalformedChunk    = errors.New("malformed embedded-file chunk")
)

// Framing selects the length-prefix layout of a stream.
type Framing int

const (
	// FramingProperty is the primary layout: a 2-byte little-endian payload
	// length, one zero byte, and a 1-byte record subtype.
	FramingProperty Framing = iota
	// FramingLegacy is the compatibility layout: a 4-byte little-endian
	// payload length and no subtype byte.
	FramingLegacy
)

// Property-list payloads are terminated by a NUL; the length field counts it.
const propertyTerminator = 0x00

// Subtype of an embedded-file chunk in the Storage stream.
const SubtypeEmbeddedFile = 0xD0

type ItemType int

const (
	// ItemProperties carries a pipe-delimited property list payload.
	ItemProperties ItemType = iota
	// ItemEmbeddedFile carries one named, still-compressed embedded file.
	ItemEmbeddedFile
)

type Item struct {
	Type    ItemType
	Payload []byte // property list text, or compressed embedded-file bytes
	Name    string // embedded-file name, empty for property lists
	Pos     int64  // byte offset of the frame header in the stream
}

type Config struct {
	Framing       Framing
	Stream        string // for recovery locations and Storage-only subtypes
	MaxRecordSize int64
	Recovery      recovery.Strategy
}

// Framer produces the finite record sequence of one stream.
type Framer struct {
	data  []byte
	pos   int64
	index int
	cfg   Config
	done  bool
}

func New(data []byte, cfg Config) *Framer {
	return &Framer{data: data, cfg: cfg}
}

func (f *Framer) Position() int64 { return f.pos }

// Next returns the next framed item. End of stream is reported as io.EOF,
// never as an error condition.
func (f *Framer) Next() (Item, error) {
	for {
		if f.done || f.pos >= int64(len(f.data)) {
			return Item{}, io.EOF
		}
		pos := f.pos
		item, err := f.next()
		if err == io.EOF || err == nil {
			return item, err
		}
		switch f.recover(err) {
		case recovery.ActionFail:
			return Item{}, err
		case recovery.ActionSkip:
			// Truncation faults leave the position unmoved; skipping in
			// place would never terminate.
			if f.pos == pos {
				f.done = true
				return Item{}, io.EOF
			}
			continue
		default:
			// A framing fault leaves no way to resynchronise; stop at the
			// last complete record.
			f.done = true
			return Item{}, io.EOF
		}
	}
}

func (f *Framer) next() (Item, error) {
	start := f.pos
	headerLen := int64(4)
	remaining := int64(len(f.data)) - f.pos
	if remaining < headerLen {
		return Item{}, fmt.Errorf("%d header bytes remain: %w", remaining, ErrTruncatedRecord)
	}

	var length int64
	var subtype byte
	switch f.cfg.Framing {
	case FramingLegacy:
		length = int64(binary.LittleEndian.Uint32(f.data[f.pos:]))
		subtype = 0
	default:
		length = int64(binary.LittleEndian.Uint16(f.data[f.pos:]))
		subtype = f.data[f.pos+3]
	}
	if f.cfg.MaxRecordSize > 0 && length > f.cfg.MaxRecordSize {
		return Item{}, fmt.Errorf("declared length %d exceeds limit: %w", length, ErrTruncatedRecord)
	}
	body := f.pos + headerLen
	if body+length > int64(len(f.data)) {
		return Item{}, fmt.Errorf("declared length %d with %d bytes remaining: %w",
			length, int64(len(f.data))-body, ErrTruncatedRecord)
	}
	payload := f.data[body : body+length]
	f.pos = body + length
	f.index++

	switch subtype {
	case 0:
		// The emitter counts the NUL terminator in the declared length.
		if n := len(payload); n > 0 && payload[n-1] == propertyTerminator {
			payload = payload[:n-1]
		}
		return Item{Type: ItemProperties, Payload: payload, Pos: start}, nil
	case SubtypeEmbeddedFile:
		if f.cfg.Stream != "Storage" {
			return Item{}, fmt.Errorf("subtype %#x in stream %q: %w", subtype, f.cfg.Stream, ErrUnexpectedSubtype)
		}
		return f.embeddedFile(payload, start)
	default:
		return Item{}, fmt.Errorf("subtype %#x: %w", subtype, ErrUnexpectedSubtype)
	}
}

// embeddedFile parses a Storage chunk: 1-byte filename length, filename,
// 4-byte little-endian compressed size, compressed bytes.
func (f *Framer) embeddedFile(payload []byte, start int64) (Item, error) {
	if len(payload) < 1 {
		return Item{}, fmt.Errorf("empty chunk: %w", ErrMalformedChunk)
	}
	nameLen := int(payload[0])
	rest := payload[1:]
	if len(rest) < nameLen+4 {
		return Item{}, fmt.Errorf("chunk header needs %d bytes, have %d: %w", nameLen+4, len(rest), ErrMalformedChunk)
	}
	name := string(rest[:nameLen])
	size := int64(binary.LittleEndian.Uint32(rest[nameLen:]))
	data := rest[nameLen+4:]
	if int64(len(data)) < size {
		return Item{}, fmt.Errorf("chunk declares %d compressed bytes, have %d: %w", size, len(data), ErrMalformedChunk)
	}
	return Item{Type: ItemEmbeddedFile, Payload: data[:size], Name: name, Pos: start}, nil
}

func (f *Framer) recover(err error) recovery.Action {
	if f.cfg.Recovery == nil {
		return recovery.ActionFail
	}
	return f.cfg.Recovery.OnError(err, recovery.Location{
		Stream:      f.cfg.Stream,
		RecordIndex: f.index,
		ByteOffset:  f.pos,
		Component:   "framer",
	})
}

// All drains the framer, applying its recovery policy, and returns every
// remaining item.
func (f *Framer) All() ([]Item, error) {
	var items []Item
	for {
		item, err := f.Next()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
