package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/ssr/pkg/store"
)

// HTTP fetches items from a JSON API laid out like the Hacker News API:
// GET {BaseURL}/item/{id}.json.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns an HTTP source with a client that times out after
// timeout. A zero timeout means no timeout.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// FetchItem implements store.ItemFetcher. A 404 or a JSON null body is
// reported as ErrNotFound.
func (h *HTTP) FetchItem(ctx context.Context, id string) (store.Item, error) {
	u := h.BaseURL + "/item/" + url.PathEscape(id) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %q: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, notFound(id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch item %q: unexpected status %s", id, resp.Status)
	}

	var item store.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item %q: %w", id, err)
	}
	if item == nil {
		return nil, notFound(id)
	}
	return item, nil
}
