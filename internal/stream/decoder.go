// Package stream decodes incrementally delivered text-generation responses.
//
// The remote service speaks a line protocol: every payload line starts with
// `data: ` and carries either the `[DONE]` sentinel or a JSON object whose
// `choices[0].delta.content` holds the next fragment of text. Transport chunks
// have no relationship to line or JSON boundaries, so the Decoder keeps the
// unconsumed tail of the input between reads and only parses complete lines.
package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
	deltaPath    = "choices.0.delta.content"
	readSize     = 4 << 10
)

// Decoder turns a byte stream into an ordered sequence of text deltas.
// A Decoder is single-use: once it reports io.EOF it stays exhausted.
type Decoder struct {
	r     io.Reader
	chunk []byte

	// buf holds raw bytes received but not yet consumed. It is only ever cut at
	// '\n', which never occurs inside a multi-byte UTF-8 sequence, so a character
	// split across two reads is reassembled before it is decoded.
	buf     []byte
	pending []string
	acc     strings.Builder
	done    bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, chunk: make([]byte, readSize)}
}

// Open checks resp and returns a Decoder over its body.
// A non-2xx status yields a *RequestFailedError and a missing body yields ErrStreamUnavailable.
func Open(resp *http.Response) (*Decoder, error) {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, requestFailed(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrStreamUnavailable
	}
	return NewDecoder(resp.Body), nil
}

// Next returns the next non-empty delta. It returns io.EOF after the sentinel
// has been seen or the input is exhausted, and ctx.Err() if ctx is cancelled
// between reads.
func (d *Decoder) Next(ctx context.Context) (string, error) {
	for {
		if len(d.pending) > 0 {
			delta := d.pending[0]
			d.pending = d.pending[1:]
			d.acc.WriteString(delta)
			return delta, nil
		}
		if d.done {
			return "", io.EOF
		}
		if err := ctx.Err(); err != nil {
			d.done = true
			return "", err
		}

		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
			d.drain(false)
		}
		if errors.Is(err, io.EOF) {
			d.flush()
			continue
		}
		if err != nil {
			d.done = true
			return "", err
		}
	}
}

// Text returns everything delivered by Next so far.
func (d *Decoder) Text() string {
	return d.acc.String()
}

// drain consumes every complete line in buf. A line whose JSON does not parse
// is left at the head of buf so that it is retried once more input arrives;
// in final mode such a line is dropped instead.
func (d *Decoder) drain(final bool) {
	for !d.done {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return
		}
		line, rest := d.buf[:i], d.buf[i+1:]

		delta, err := parseLine(line)
		switch {
		case errors.Is(err, errDone):
			d.buf = rest
			d.done = true
			return
		case errors.Is(err, errMalformedFrame):
			if d.joinContinuation(i) {
				continue
			}
			if !final {
				return
			}
		case delta != "":
			d.pending = append(d.pending, delta)
		}
		d.buf = rest
	}
}

// joinContinuation merges the line ending at index i with the following line
// when that line cannot be a protocol line of its own. This repairs a payload
// that was cut by a stray newline.
func (d *Decoder) joinContinuation(i int) bool {
	rest := d.buf[i+1:]
	j := bytes.IndexByte(rest, '\n')
	if j < 0 || !isContinuation(rest[:j]) {
		return false
	}
	merged := make([]byte, 0, len(d.buf)-1)
	merged = append(merged, bytes.TrimSuffix(d.buf[:i], []byte{'\r'})...)
	merged = append(merged, rest...)
	d.buf = merged
	return true
}

// flush runs the end-of-input pass over whatever is still buffered.
func (d *Decoder) flush() {
	if !d.done && len(d.buf) > 0 {
		d.buf = append(d.buf, '\n')
		d.drain(true)
	}
	d.buf = nil
	d.done = true
}

func parseLine(line []byte) (string, error) {
	text := strings.TrimSuffix(string(line), "\r")
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, ":") {
		return "", nil
	}
	if !strings.HasPrefix(text, dataPrefix) {
		return "", nil
	}

	payload := strings.TrimSpace(text[len(dataPrefix):])
	if payload == doneSentinel {
		return "", errDone
	}
	if !gjson.Valid(payload) {
		return "", errMalformedFrame
	}
	return gjson.Get(payload, deltaPath).String(), nil
}

func isContinuation(line []byte) bool {
	text := strings.TrimSuffix(string(line), "\r")
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, ":") {
		return false
	}
	for _, field := range []string{"data:", "event:", "id:", "retry:"} {
		if strings.HasPrefix(text, field) {
			return false
		}
	}
	return true
}

// Collect reads d to the end, passing each delta to onDelta, and returns the
// accumulated text with surrounding whitespace removed. On failure the partial
// text is returned with the error. A stream that ends cleanly without text
// yields ErrEmptyResponse.
func Collect(ctx context.Context, d *Decoder, onDelta func(string)) (string, error) {
	for {
		delta, err := d.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return d.Text(), err
		}
		if onDelta != nil {
			onDelta(delta)
		}
	}

	text := strings.TrimSpace(d.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
