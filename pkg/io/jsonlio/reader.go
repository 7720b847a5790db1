package jsonlio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wdm0006/vistas/pkg/frame"
	iox "github.com/wdm0006/vistas/pkg/io/ioutils"
)

// Reader decodes a JSON Lines stream of flat objects. Column order is the
// order in which keys are first seen.
type Reader struct {
	dec    *json.Decoder
	closer io.Closer
}

// Open opens a (possibly gzip compressed) JSONL file. The caller closes the Reader.
func Open(path string) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc)
	r.closer = rc
	return r, nil
}

func NewReaderFrom(r io.Reader) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadAll decodes every object into a Frame of string columns. Keys missing
// from an object are null for that row.
func (r *Reader) ReadAll() (*frame.Frame, error) {
	var (
		keys []string
		seen = map[string]bool{}
		rows []map[string]*string
	)
	for line := 1; ; line++ {
		order, vals, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: jsonl object %d: %v", frame.ErrParse, line, err)
		}
		for _, k := range order {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		rows = append(rows, vals)
	}
	f, err := frame.NewFrame(frame.StringSchema(keys...))
	if err != nil {
		return nil, err
	}
	for i, m := range rows {
		f.AppendNullRow()
		for k, v := range m {
			if v != nil {
				_ = f.SetCell(i, k, *v)
			}
		}
	}
	return f, nil
}

// next decodes one object keeping key order.
func (r *Reader) next() ([]string, map[string]*string, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var order []string
	vals := map[string]*string{}
	for r.dec.More() {
		kt, err := r.dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := r.dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := vals[key]; !dup {
			order = append(order, key)
		}
		vals[key], err = cellText(raw)
		if err != nil {
			return nil, nil, err
		}
	}
	if _, err := r.dec.Token(); err != nil {
		return nil, nil, err
	}
	return order, vals, nil
}

func cellText(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	var out string
	switch {
	case bytes.Equal(raw, []byte("null")):
		return nil, nil
	case len(raw) > 0 && raw[0] == '"':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		b, _ := strconv.ParseBool(string(raw))
		out = strconv.FormatBool(b)
	default:
		// numbers keep their literal text; nested values stay compact JSON
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		out = buf.String()
	}
	return &out, nil
}
