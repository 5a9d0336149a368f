package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatEvent formats an event according to the text/event-stream framing:
//
//	id: <seq>      (only for sequenced events)
//	event: <type>
//	data: <payload line>
//	<blank line>
func FormatEvent(event *Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}
	if err := ValidateEventType(event.Type); err != nil {
		return nil, err
	}

	data, err := encodeData(event.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if event.HasSeq() {
		buf.WriteString("id: ")
		buf.WriteString(strconv.FormatUint(event.Seq, 10))
		buf.WriteByte('\n')
	}

	buf.WriteString("event: ")
	buf.WriteString(event.Type)
	buf.WriteByte('\n')

	for _, line := range splitLines(data) {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteEvent formats event and writes the whole frame to w in a single call.
func WriteEvent(w io.Writer, event *Event) error {
	frame, err := FormatEvent(event)
	if err != nil {
		return fmt.Errorf("failed to format event: %w", err)
	}

	n, err := w.Write(frame)
	if err != nil {
		return err
	}
	if n < len(frame) {
		return io.ErrShortWrite
	}
	return nil
}

func encodeData(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal data: %w", err)
		}
		return string(encoded), nil
	}
}

// splitLines splits data into lines for the "data:" fields. CRLF, CR and
// LF are all treated as line breaks.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
