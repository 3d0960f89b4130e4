package rickmorty

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/mmcdole/citadel/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Citadel/1.0"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Client
type Options struct {
	Timeout   time.Duration // Per-request timeout, 0 uses the default
	RateLimit int           // Requests per second, 0 = unlimited
	UserAgent string
}

// Client implements domain.CharacterSource for the Rick and Morty API.
// It never retries; callers decide whether a failed page is requested again.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// FetchPage returns one page of characters
func (c *Client) FetchPage(ctx context.Context, page int) (domain.PageResponse, error) {
	if page < 1 {
		return domain.PageResponse{}, fmt.Errorf("invalid page %d", page)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, "/character", query)
	if err != nil {
		return domain.PageResponse{}, err
	}

	var resp PageResponse
	if err := c.parseResponse(body, &resp); err != nil {
		return domain.PageResponse{}, err
	}

	return MapPage(resp), nil
}

// doRequest performs a rate-limited GET request and returns the body
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrTransport, err)
	}

	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("api request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("api request failed", "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, errorMessage(body, resp.Status))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	default:
		c.logger.Error("api request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrTransport, resp.StatusCode)
	}
}

// parseResponse decodes a JSON body into dest
func (c *Client) parseResponse(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return nil
}

// errorMessage extracts the API's error message, falling back to status
func errorMessage(body []byte, status string) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return status
}
