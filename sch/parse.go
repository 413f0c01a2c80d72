package sch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"schlib/cfb"
	"schlib/filters"
	"schlib/observability"
	"schlib/record"
	"schlib/recovery"
	"schlib/scanner"
)

// ParseOptions configures the decode pipeline. Zero values select lenient
// best-effort recovery and no logging.
type ParseOptions struct {
	Recovery recovery.Strategy
	Logger   observability.Logger
	Framing  scanner.Framing
	// MaxEmbeddedSize caps the decompressed size of one embedded file.
	// Zero selects the filters package default.
	MaxEmbeddedSize int64
}

// Parse decodes a schematic document: container, record framing, property
// lists, object tree, embedded files. Only structural failures on the
// FileHeader stream are fatal; everything else degrades to warnings on the
// tree.
func Parse(r io.ReaderAt, opts ParseOptions) (*Tree, error) {
	if opts.Recovery == nil {
		opts.Recovery = recovery.NewLenientStrategy()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}

	container, err := cfb.Open(r)
	if err != nil {
		return nil, err
	}
	return ParseContainer(container, opts)
}

// ParseContainer decodes a schematic from an already-opened container.
func ParseContainer(container *cfb.Container, opts ParseOptions) (*Tree, error) {
	if opts.Recovery == nil {
		opts.Recovery = recovery.NewLenientStrategy()
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}

	data, err := container.Read(cfb.StreamFileHeader)
	if err != nil {
		return nil, fmt.Errorf("schematic: %w", err)
	}

	builder := NewBuilder()
	items, err := frameStream(data, cfb.StreamFileHeader, opts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoHeader
	}
	if err := builder.Header(record.Parse(items[0].Payload)); err != nil {
		return nil, err
	}
	for _, item := range items[1:] {
		if item.Type != scanner.ItemProperties {
			continue
		}
		builder.Add(record.Parse(item.Payload))
	}

	// The Additional stream appends more object records, indices
	// continuing from the FileHeader sequence.
	if container.Has(cfb.StreamAdditional) {
		if extra, err := container.Read(cfb.StreamAdditional); err == nil {
			items, err := frameStream(extra, cfb.StreamAdditional, opts)
			if err == nil {
				for i, item := range items {
					if item.Type != scanner.ItemProperties {
						continue
					}
					p := record.Parse(item.Payload)
					if i == 0 && p.Has("HEADER") {
						continue
					}
					builder.Add(p)
				}
			}
		}
	}

	if container.Has(cfb.StreamStorage) {
		if storage, err := container.Read(cfb.StreamStorage); err == nil {
			loadStorage(builder, storage, opts, log)
		}
	}

	tree := builder.Finish()
	if lenient, ok := opts.Recovery.(*recovery.LenientStrategy); ok {
		for _, err := range lenient.Errors {
			tree.Warnings = append(tree.Warnings, err.Error())
		}
	}
	for _, w := range tree.Warnings {
		log.Warn(w)
	}
	return tree, nil
}

func frameStream(data []byte, stream string, opts ParseOptions) ([]scanner.Item, error) {
	f := scanner.New(data, scanner.Config{
		Framing:  opts.Framing,
		Stream:   stream,
		Recovery: opts.Recovery,
	})
	return f.All()
}

// loadStorage inflates the embedded-file chunks. A chunk that fails to
// decompress is dropped with a warning; the image record that references
// it will render a placeholder instead.
func loadStorage(builder *Builder, data []byte, opts ParseOptions, log observability.Logger) {
	items, err := frameStream(data, cfb.StreamStorage, opts)
	if err != nil {
		builder.warnf("storage stream: %v", err)
		return
	}
	pipeline := filters.NewPipeline(
		[]filters.Decoder{filters.NewZlibDecoder()},
		filters.Limits{MaxDecompressedSize: opts.MaxEmbeddedSize},
	)
	for _, item := range items {
		if item.Type != scanner.ItemEmbeddedFile {
			continue
		}
		payload, err := pipeline.Decode(context.Background(), item.Payload, []string{"ZlibDecode"})
		if err != nil {
			builder.warnf("embedded file %q: %v", item.Name, err)
			log.Warn("embedded file dropped",
				observability.String("name", item.Name), observability.Error("err", err))
			continue
		}
		builder.AddEmbedded(item.Name, payload)
	}
}

// ParseFile reads and decodes one schematic file.
func ParseFile(path string, opts ParseOptions) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data), opts)
}
