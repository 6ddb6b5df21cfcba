// Package source reads statement documents from disk or over HTTP
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

type Source struct {
	client *http.Client
}

func New(client *http.Client) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{client: client}
}

// Read returns the raw bytes at location, an http(s) URL or a file path.
func (s *Source) Read(ctx context.Context, location string) ([]byte, error) {
	if IsURL(location) {
		return s.fetch(ctx, location)
	}

	path := NormalizePath(location)
	log.Debug().Str("Path", path).Msg("Reading statement file")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read statement file %s: %w", path, err)
	}
	return data, nil
}

func (s *Source) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/xml, text/xml")

	log.Debug().Str("URL", url).Msg("Fetching statement")
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statement: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch statement: %s - %v", res.Status, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// NormalizePath collapses doubled backslashes, as written in escaped Windows paths.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\\`, `\`)
}
