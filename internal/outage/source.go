package outage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source yields the raw JSON of one region's dataset.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// HTTPSource downloads a dataset over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource with a 30s timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL: url,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPSource) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", s.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads a dataset from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

func (s *FileSource) String() string { return s.Path }

// NewSource picks a source by location: http(s) URLs are downloaded,
// anything else (optionally prefixed with file://) is read from disk.
func NewSource(location string) Source {
	loc := strings.TrimSpace(location)
	lower := strings.ToLower(loc)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return NewHTTPSource(loc)
	case strings.HasPrefix(lower, "file://"):
		return &FileSource{Path: loc[len("file://"):]}
	}
	return &FileSource{Path: loc}
}

// NewSources builds one source per configured region.
func NewSources(locations map[string]string) map[string]Source {
	out := make(map[string]Source, len(locations))
	for region, loc := range locations {
		out[region] = NewSource(loc)
	}
	return out
}
