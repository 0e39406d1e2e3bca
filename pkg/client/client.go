// Package client is the data layer consumed by front ends: it fetches
// the four collections, substitutes bundled sample data when the API is
// unavailable, and implements the accept and submit flows.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// Client calls the jala-match HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client for the given base URL, e.g.
// "https://jala.example.org".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// NewWithHTTPClient creates an API client using the given http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, string(text))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Musicians fetches all musician profiles.
func (c *Client) Musicians(ctx context.Context) ([]Musician, error) {
	var wrapped struct {
		Musicians []Musician `json:"musicians"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/musicians", nil, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Musicians, nil
}

// Requests fetches all requests.
func (c *Client) Requests(ctx context.Context) ([]Request, error) {
	var out []Request
	if err := c.do(ctx, http.MethodGet, "/api/requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Responses fetches all responses.
func (c *Client) Responses(ctx context.Context) ([]Response, error) {
	var out []Response
	if err := c.do(ctx, http.MethodGet, "/api/responses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Matches fetches all matches.
func (c *Client) Matches(ctx context.Context) ([]Match, error) {
	var out []Match
	if err := c.do(ctx, http.MethodGet, "/api/matches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMusician creates a musician profile. Performances start at zero.
func (c *Client) CreateMusician(ctx context.Context, payload Musician) (Musician, error) {
	payload.Performances = 0
	var out Musician
	err := c.do(ctx, http.MethodPost, "/api/musicians", payload, &out)
	return out, err
}

// Data is the loaded view the presentation layer renders from.
type Data struct {
	Musicians []Musician
	Requests  []Request
	Responses []Response
	// AcceptedByRequest maps request id to the accepted musician id.
	AcceptedByRequest map[string]string
	// Fallback is true when sample data was substituted because the API
	// failed or returned an empty collection.
	Fallback bool
}

// LoadAll fetches the four collections in parallel and derives the
// request-to-musician match map. On failure, or for any empty collection,
// the bundled sample data is substituted and Fallback is set.
func (c *Client) LoadAll(ctx context.Context) Data {
	data := Data{AcceptedByRequest: map[string]string{}}

	var (
		wg                     sync.WaitGroup
		musicians              []Musician
		requests               []Request
		responses              []Response
		matches                []Match
		errM, errR, errG, errX error
	)
	wg.Add(4)
	go func() { defer wg.Done(); musicians, errM = c.Musicians(ctx) }()
	go func() { defer wg.Done(); requests, errR = c.Requests(ctx) }()
	go func() { defer wg.Done(); responses, errG = c.Responses(ctx) }()
	go func() { defer wg.Done(); matches, errX = c.Matches(ctx) }()
	wg.Wait()

	if errM != nil || errR != nil || errG != nil || errX != nil {
		data.Musicians = SampleMusicians()
		data.Requests = SampleRequests()
		data.Responses = SampleResponses()
		data.Fallback = true
		return data
	}

	data.Musicians = musicians
	data.Requests = requests
	data.Responses = responses
	if len(musicians) == 0 {
		data.Musicians = SampleMusicians()
		data.Fallback = true
	}
	if len(requests) == 0 {
		data.Requests = SampleRequests()
		data.Fallback = true
	}
	if len(responses) == 0 {
		data.Responses = SampleResponses()
		data.Fallback = true
	}

	for _, m := range matches {
		data.AcceptedByRequest[m.RequestID] = m.MusicianID
	}

	return data
}

// SubmitRequest creates a request with status Open, then opens a checkout
// session for it. Returns the created request and the hosted payment URL.
// The request exists even when session creation fails; callers retry the
// payment, not the request.
func (c *Client) SubmitRequest(ctx context.Context, payload Request, amountAud float64) (Request, string, error) {
	payload.Status = "Open"
	var created Request
	if err := c.do(ctx, http.MethodPost, "/api/requests", payload, &created); err != nil {
		return Request{}, "", err
	}

	var checkout struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/payments/checkout", map[string]any{
		"requestId": created.ID,
		"committee": created.Committee,
		"needs":     created.Needs,
		"amountAud": amountAud,
	}, &checkout)
	if err != nil {
		return created, "", fmt.Errorf("request saved but checkout failed: %w", err)
	}

	return created, checkout.URL, nil
}

// AcceptMusician records a committee's choice: create the match if the
// request has none yet, otherwise patch it in place (match id doubles as
// the request id), then mark the request Confirmed. The at-most-one-match
// rule lives here, not in the storage adapter.
func (c *Client) AcceptMusician(ctx context.Context, accepted map[string]string, requestID, musicianID string) error {
	payload := map[string]string{"id": requestID, "requestId": requestID, "musicianId": musicianID}

	var err error
	if _, exists := accepted[requestID]; exists {
		err = c.do(ctx, http.MethodPatch, "/api/matches", payload, nil)
	} else {
		err = c.do(ctx, http.MethodPost, "/api/matches", payload, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}

	if err := c.do(ctx, http.MethodPatch, "/api/requests", map[string]string{
		"id":     requestID,
		"status": "Confirmed",
	}, nil); err != nil {
		return fmt.Errorf("failed to confirm request: %w", err)
	}

	accepted[requestID] = musicianID
	return nil
}

// VerifyResult mirrors the verify endpoint's response.
type VerifyResult struct {
	OK        bool   `json:"ok"`
	Paid      bool   `json:"paid"`
	RequestID string `json:"requestId"`
}

// VerifyPayment checks a checkout session after the success redirect.
func (c *Client) VerifyPayment(ctx context.Context, sessionID string) (VerifyResult, error) {
	var out VerifyResult
	err := c.do(ctx, http.MethodPost, "/api/payments/verify", map[string]string{"sessionId": sessionID}, &out)
	return out, err
}

// Instrument category buckets, in display order.
var Categories = []string{
	"Singing & Vocals",
	"Strings",
	"Keys & Piano",
	"Rhythm & Percussion",
	"Wind & Brass",
	"Other",
}

var categoryPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Singing & Vocals", regexp.MustCompile(`(?i)voice|vocal|sing|choir`)},
	{"Strings", regexp.MustCompile(`(?i)guitar|violin|cello|ukulele|string`)},
	{"Keys & Piano", regexp.MustCompile(`(?i)piano|keyboard|keys|synth`)},
	{"Rhythm & Percussion", regexp.MustCompile(`(?i)drum|percussion|cajon|rhythm`)},
	{"Wind & Brass", regexp.MustCompile(`(?i)flute|sax|trumpet|clarinet|wind|brass`)},
}

// Category buckets a musician by instrument.
func Category(instrument string) string {
	for _, p := range categoryPatterns {
		if p.re.MatchString(instrument) {
			return p.name
		}
	}
	return "Other"
}

// CategorizeMusicians groups musicians into instrument buckets. Every
// bucket is present even when empty.
func CategorizeMusicians(musicians []Musician) map[string][]Musician {
	buckets := make(map[string][]Musician, len(Categories))
	for _, name := range Categories {
		buckets[name] = []Musician{}
	}
	for _, m := range musicians {
		name := Category(m.Instrument)
		buckets[name] = append(buckets[name], m)
	}
	return buckets
}
