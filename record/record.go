// Package record tokenizes property-list payloads and decodes their typed
// values. Every decode function is total: an absent or malformed value
// yields the field's documented default, never an error.
package record

import (
	"bytes"
	"strings"
)

// Properties is the ordered-but-deduplicated key/value map of one record.
// Keys compare case-insensitively after stripping non-alphanumeric
// characters, so LOCATION.X and LOCATIONX address the same field. Later
// occurrences of a duplicate key overwrite earlier ones.
type Properties struct {
	keys []string
	vals map[string]string
}

// Normalize maps a key to its canonical comparison form.
func Normalize(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Parse splits a payload on the pipe delimiter. The leading empty token
// produced by the usual "|KEY=..." prefix is ignored; record kind 28 omits
// the prefix, so the first token may itself be a pair. A token without "="
// is a key with an empty value. Parse never fails.
func Parse(payload []byte) Properties {
	p := Properties{vals: make(map[string]string)}
	for _, token := range bytes.Split(payload, []byte("|")) {
		if len(token) == 0 {
			continue
		}
		var key, val []byte
		if eq := bytes.IndexByte(token, '='); eq >= 0 {
			key, val = token[:eq], token[eq+1:]
		} else {
			key = token
		}
		p.set(string(key), string(val))
	}
	return p
}

func (p *Properties) set(key, val string) {
	norm := Normalize(key)
	if norm == "" {
		return
	}
	if _, dup := p.vals[norm]; !dup {
		p.keys = append(p.keys, norm)
	}
	p.vals[norm] = val
}

func (p Properties) Len() int { return len(p.keys) }

// Keys returns the normalized keys in first-occurrence order.
func (p Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Raw returns the raw string value for key, before any typed decoding.
func (p Properties) Raw(key string) (string, bool) {
	v, ok := p.vals[Normalize(key)]
	return v, ok
}

func (p Properties) Has(key string) bool {
	_, ok := p.vals[Normalize(key)]
	return ok
}
