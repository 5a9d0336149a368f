package sseclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// Stream is an open event stream
type Stream struct {
	body   io.ReadCloser
	reader *Reader
}

// Subscribe opens the event stream at url. The stream ends when ctx is
// cancelled, the server closes it or Close is called.
func Subscribe(ctx context.Context, client *http.Client, url string) (*Stream, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("connect %s: unexpected status %s", url, resp.Status)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/event-stream" {
		resp.Body.Close()
		return nil, fmt.Errorf("connect %s: unexpected content type %q", url, resp.Header.Get("Content-Type"))
	}

	return &Stream{
		body:   resp.Body,
		reader: NewReader(resp.Body),
	}, nil
}

// Next blocks until the next event arrives
func (s *Stream) Next() (*Event, error) {
	return s.reader.Next()
}

func (s *Stream) Close() error {
	return s.body.Close()
}
