// Package avatar retrieves character portrait images for accounts when the
// configuration asks for them. A failed fetch is never fatal; the caller
// keeps the previously stored image.
package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the public image service of the identity platform.
const DefaultBaseURL = "https://images.evetech.net"

// Source fetches the portrait image for a character.
type Source interface {
	Fetch(ctx context.Context, characterID int64) ([]byte, error)
}

// HTTPSource fetches 128px portraits over HTTP.
type HTTPSource struct {
	client  *http.Client
	baseURL string
}

func NewHTTPSource(baseURL string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, characterID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/characters/%d/portrait?size=128&tenant=tranquility", s.baseURL, characterID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portrait request returned %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
