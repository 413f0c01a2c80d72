package filters

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"testing"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestInflateRoundTrip(t *testing.T) {
	want := []byte("embedded bitmap payload")
	got, err := Inflate(deflate(t, want))
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Inflate = %q, want %q", got, want)
	}
}

func TestInflateRejectsGarbage(t *testing.T) {
	if _, err := Inflate([]byte("not zlib")); err == nil {
		t.Fatal("expected error for non-zlib input")
	}
}

func TestPipelineUnknownFilter(t *testing.T) {
	p := NewPipeline([]Decoder{NewZlibDecoder()}, Limits{})
	if _, err := p.Decode(context.Background(), nil, []string{"Nope"}); err == nil {
		t.Fatal("expected unknown filter error")
	}
}

func TestPipelineZlib(t *testing.T) {
	p := NewPipeline([]Decoder{NewZlibDecoder()}, Limits{MaxDecompressedSize: 1024})
	got, err := p.Decode(context.Background(), deflate(t, []byte("x")), []string{"ZlibDecode"})
	if err != nil || string(got) != "x" {
		t.Fatalf("Decode = %q, %v", got, err)
	}
}

func TestPipelineSizeLimit(t *testing.T) {
	p := NewPipeline([]Decoder{NewZlibDecoder()}, Limits{MaxDecompressedSize: 4})
	if _, err := p.Decode(context.Background(), deflate(t, []byte("longer than four")), []string{"ZlibDecode"}); err == nil {
		t.Fatal("expected size limit error")
	}
}

// minimalBMP builds a 1x1 24-bit BMP header good enough for DecodeConfig.
func minimalBMP() []byte {
	var buf bytes.Buffer
	// file header
	buf.WriteString("BM")
	binary.Write(&buf, binary.LittleEndian, uint32(58)) // file size
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(54)) // pixel offset
	// info header
	binary.Write(&buf, binary.LittleEndian, uint32(40))
	binary.Write(&buf, binary.LittleEndian, int32(1)) // width
	binary.Write(&buf, binary.LittleEndian, int32(1)) // height
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(24))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0x00}) // one padded pixel row
	return buf.Bytes()
}

func TestSniffImageBMP(t *testing.T) {
	info, err := SniffImage(minimalBMP())
	if err != nil {
		t.Fatalf("SniffImage: %v", err)
	}
	if info.Format != "bmp" || info.Width != 1 || info.Height != 1 {
		t.Fatalf("SniffImage = %+v", info)
	}
	if MIMEType(info.Format) != "image/bmp" {
		t.Fatalf("MIMEType = %q", MIMEType(info.Format))
	}
}

func TestSniffImageUnknown(t *testing.T) {
	if _, err := SniffImage([]byte("plain text")); err == nil {
		t.Fatal("expected error for unknown image payload")
	}
}
