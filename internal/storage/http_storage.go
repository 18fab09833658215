package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"
)

// ImageFetcher retrieves a case image by reference: a URL for the HTTP
// backend, a blob name for the Azure backend.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (image.Image, error)
}

// Backend names a case image source implementation.
type Backend string

const (
	BackendHTTP  Backend = "http"
	BackendAzure Backend = "azure"
)

// HTTPImageFetcher pulls teaching-case images over plain HTTP.
type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid case image URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, */*")

	// Single retry on transient failure; case images are optional context.
	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err = h.client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			resp.Body.Close()
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, fmt.Errorf("case image fetch failed: %w", lastErr)
			}
			resp = nil
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("case image fetch failed: %w", lastErr)
	}
	defer resp.Body.Close()

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode case image: %w", err)
	}
	return img, nil
}
