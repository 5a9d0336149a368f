// Package sseclient consumes a text/event-stream. Payloads that are not valid
// JSON are kept as raw text rather than treated as errors.
package sseclient

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-contrib/sse"
)

const maxLineSize = 1 << 20

// Event is one decoded event. Payload is nil when Data is not a JSON object.
type Event struct {
	ID      string
	Type    string
	Data    string
	Payload map[string]any
}

// Seq returns the numeric event id, or false when the event has none.
func (e *Event) Seq() (uint64, bool) {
	if e.ID == "" {
		return 0, false
	}
	seq, err := strconv.ParseUint(e.ID, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// String returns a payload field rendered as text
func (e *Event) String(key string) string {
	v, ok := e.Payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Reader splits a stream into events
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF when the stream ends; an
// incomplete trailing event is discarded.
func (r *Reader) Next() (*Event, error) {
	var block strings.Builder

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line != "" {
			block.WriteString(line)
			block.WriteByte('\n')
			continue
		}

		if block.Len() == 0 {
			continue
		}

		events, err := decodeBlock(block.String())
		if err != nil {
			return nil, err
		}
		block.Reset()

		// Blocks with comments only decode to nothing
		if len(events) == 0 {
			continue
		}
		return events[0], nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return nil, io.EOF
}

func decodeBlock(block string) ([]*Event, error) {
	decoded, err := sse.Decode(strings.NewReader(block + "\n"))
	if err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	events := make([]*Event, 0, len(decoded))
	for _, d := range decoded {
		data, _ := d.Data.(string)
		event := &Event{
			ID:   d.Id,
			Type: d.Event,
			Data: data,
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(data), &payload); err == nil {
			event.Payload = payload
		}
		events = append(events, event)
	}
	return events, nil
}

// IsEOF reports whether err marks the normal end of a stream
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
