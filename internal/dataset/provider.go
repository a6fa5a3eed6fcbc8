package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrDataUnavailable is returned when no usable records could be fetched.
// It is recovered locally by synthetic generation and never fatal.
var ErrDataUnavailable = errors.New("dataset unavailable")

// Provider supplies an ordered season of records.
type Provider interface {
	Fetch(ctx context.Context, count int) ([]Record, error)
}

// Response is the JSON envelope served by a dataset endpoint.
type Response struct {
	Data []Record `json:"data"`
}

// HTTPProvider fetches records from a JSON endpoint: GET <URL>?count=N.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

// NewHTTPProvider builds a provider with a bounded request timeout.
func NewHTTPProvider(endpoint string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPProvider{URL: endpoint, Client: client}
}

func (p *HTTPProvider) Fetch(ctx context.Context, count int) ([]Record, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url: %v", ErrDataUnavailable, err)
	}
	q := u.Query()
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		return nil, fmt.Errorf("%w: status %d", ErrDataUnavailable, resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrDataUnavailable, err)
	}
	if len(body.Data) < count {
		return nil, fmt.Errorf("%w: got %d records, want %d", ErrDataUnavailable, len(body.Data), count)
	}
	return body.Data[:count], nil
}

// Loaded is the outcome of Load.
type Loaded struct {
	Records   []Record
	Synthetic bool  // true when the fallback generator produced Records
	Cause     error // why the provider was not used; nil on success
}

// Load asks the provider for count records and falls back to the generator
// on any failure. A nil provider goes straight to the generator.
func Load(ctx context.Context, p Provider, fallback *Synthetic, count int) Loaded {
	if p == nil {
		return Loaded{Records: fallback.Generate(count), Synthetic: true, Cause: fmt.Errorf("%w: no provider configured", ErrDataUnavailable)}
	}
	records, err := p.Fetch(ctx, count)
	if err != nil {
		if !errors.Is(err, ErrDataUnavailable) {
			err = fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		return Loaded{Records: fallback.Generate(count), Synthetic: true, Cause: err}
	}
	return Loaded{Records: records}
}
