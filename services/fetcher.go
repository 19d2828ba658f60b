package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchError means the source material could not be retrieved. The caller
// treats it as fatal to the request; there is no retry at this layer.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SourceFetcher downloads the raw bytes of a study material from its
// storage URL.
type SourceFetcher struct {
	client *http.Client
}

func NewSourceFetcher(timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *SourceFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return data, nil
}
