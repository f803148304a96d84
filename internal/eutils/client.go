package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/citegraph/gref/internal/document"
	"github.com/citegraph/gref/internal/ratelimit"
)

const (
	// BaseURL is the E-utilities base URL.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// Family is the rate-limit key shared by all E-utilities endpoints.
	Family = "eutils"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultAttempts is the number of tries per call before a transport failure is surfaced.
	DefaultAttempts = 3

	// DefaultSearchLimit is the number of identifiers returned by esearch.
	DefaultSearchLimit = 20

	// DefaultTool identifies this program to NCBI.
	DefaultTool = "gref"
)

// Client is a rate-limited, retrying HTTP client for E-utilities.
type Client struct {
	httpClient  *http.Client
	gate        *ratelimit.Gate
	logger      *log.Logger
	baseURL     string
	apiKey      string
	tool        string
	email       string
	attempts    int
	timeout     time.Duration
	searchLimit int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEmail sets the contact email sent with every request.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithTool sets the tool name sent with every request.
func WithTool(tool string) ClientOption {
	return func(c *Client) {
		c.tool = tool
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAttempts sets the number of attempts per call.
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSearchLimit sets the esearch retmax.
func WithSearchLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client whose calls all pass through gate.
// A nil gate gets a private gate with the default interval.
func NewClient(gate *ratelimit.Gate, opts ...ClientOption) *Client {
	if gate == nil {
		gate = ratelimit.NewGate(ratelimit.DefaultInterval)
	}
	c := &Client{
		httpClient:  &http.Client{},
		gate:        gate,
		logger:      log.New(io.Discard),
		baseURL:     BaseURL,
		tool:        DefaultTool,
		attempts:    DefaultAttempts,
		timeout:     DefaultTimeout,
		searchLimit: DefaultSearchLimit,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// call posts params to an endpoint and hands the body to decode, retrying
// failed attempts. A body that decode rejects counts as a failed attempt. The gate
// is waited before every attempt, including retries.
func (c *Client) call(ctx context.Context, cgi string, params url.Values, decode func([]byte) error) error {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := c.gate.Wait(ctx, Family); err != nil {
			return err
		}

		body, err := c.post(ctx, cgi, params)
		if err == nil {
			if err = decode(body); err == nil {
				return nil
			}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", cgi, ctx.Err())
		}

		lastErr = err
		c.logger.Warn("E-utilities attempt failed", "endpoint", cgi, "attempt", attempt, "of", c.attempts, "err", err)
	}

	return fmt.Errorf("%w: %s failed after %d attempts: %w", ErrTransport, cgi, c.attempts, lastErr)
}

// post performs a single attempt.
func (c *Client) post(ctx context.Context, cgi string, params url.Values) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + cgi + ".fcgi"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   cgi,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	return body, nil
}

// Search returns PubMed identifiers matching term, most relevant first.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("sort", "relevance")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(c.searchLimit))

	var result searchResult
	err := c.call(ctx, "esearch", params, func(body []byte) error {
		result = searchResult{}
		if err := xml.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.IDs))
	for _, id := range result.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FetchMetadata fetches article records for ids in one batched call.
// Identifiers unknown to PubMed are simply absent from the result.
func (c *Client) FetchMetadata(ctx context.Context, ids []string) ([]document.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("retmode", "xml")
	params.Set("id", strings.Join(ids, ","))

	var set articleSet
	err := c.call(ctx, "efetch", params, func(body []byte) error {
		set = articleSet{}
		if err := xml.Unmarshal(body, &set); err != nil {
			return fmt.Errorf("%w: parsing articles: %v", ErrInvalidResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, 0, len(set.Articles))
	for _, a := range set.Articles {
		doc := mapArticle(a)
		if doc.ID == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FetchLinks returns the citing and related identifiers for id.
// Both slices are non-nil.
func (c *Client) FetchLinks(ctx context.Context, id string) (Links, error) {
	params := url.Values{}
	params.Set("dbfrom", "pubmed")
	params.Set("db", "pubmed")
	params.Set("cmd", "neighbor_score")
	params.Set("id", id)

	var result linkResult
	err := c.call(ctx, "elink", params, func(body []byte) error {
		result = linkResult{}
		if err := xml.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("%w: parsing links for %s: %v", ErrInvalidResponse, id, err)
		}
		return nil
	})
	if err != nil {
		return Links{}, err
	}

	links := Links{CitedIn: []string{}, Related: []string{}}
	for _, set := range result.LinkSets {
		for _, db := range set.DBs {
			switch strings.TrimSpace(db.LinkName) {
			case LinkNameCitedIn:
				links.CitedIn = cleanIDs(db.IDs)
			case LinkNameRelated:
				links.Related = cleanIDs(db.IDs)
			}
		}
	}
	return links, nil
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
