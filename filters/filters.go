// Package filters decodes embedded-file payloads surfaced by the Storage
// stream. Decompression codecs are consumed bytes-in/bytes-out; the
// schematic pipeline never interprets compressed data itself.
package filters

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"io"
)

type Decoder interface {
	Name() string
	Decode(ctx context.Context, input []byte) ([]byte, error)
}

type Limits struct {
	MaxDecompressedSize int64
}

type Pipeline struct {
	decoders []Decoder
	limits   Limits
}

func NewPipeline(decoders []Decoder, limits Limits) *Pipeline {
	return &Pipeline{decoders: decoders, limits: limits}
}

func (p *Pipeline) findDecoder(name string) Decoder {
	for _, d := range p.decoders {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func (p *Pipeline) Decode(ctx context.Context, input []byte, filterNames []string) ([]byte, error) {
	data := input
	for _, name := range filterNames {
		dec := p.findDecoder(name)
		if dec == nil {
			return nil, errors.New("unknown filter: " + name)
		}
		out, err := dec.Decode(ctx, data)
		if err != nil {
			return nil, err
		}
		if p.limits.MaxDecompressedSize > 0 && int64(len(out)) > p.limits.MaxDecompressedSize {
			return nil, errors.New("decompressed size exceeds limit")
		}
		data = out
	}
	return data, nil
}

type zlibDecoder struct {
	maxSize int64
}

func (zlibDecoder) Name() string { return "ZlibDecode" }

func (d zlibDecoder) Decode(ctx context.Context, in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	limit := d.maxSize
	if limit <= 0 {
		limit = 64 << 20
	}
	n, err := io.Copy(&out, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errors.New("decompressed size exceeds limit")
	}
	return out.Bytes(), nil
}

func NewZlibDecoder() Decoder { return zlibDecoder{} }

// Inflate is the common case: one zlib-wrapped embedded file.
func Inflate(data []byte) ([]byte, error) {
	return zlibDecoder{}.Decode(context.Background(), data)
}
