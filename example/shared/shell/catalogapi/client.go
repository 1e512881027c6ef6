package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

const (
	defaultRequestTimeout       = 5 * time.Second
	defaultMaxRetries           = 3
	defaultInitialRetryInterval = 100 * time.Millisecond
	defaultMaxRetryInterval     = 2 * time.Second

	popularTitlesPath = "/titles/popular"
	titleDetailsPath  = "/titles/"
	searchTitlesPath  = "/titles/search"
	genresPath        = "/genres"

	searchQueryParam = "query"
)

var (
	// ErrEmptyBaseURL is returned when NewClient is called without a base URL.
	ErrEmptyBaseURL = errors.New("catalog api base url must not be empty")

	// ErrNilHTTPClient is returned when WithHTTPClient is called with a nil client.
	ErrNilHTTPClient = errors.New("http client must not be nil")
)

// Client fetches catalog data from the remote catalog API over HTTP.
//
// Each request runs under its own timeout derived from the caller's context.
// Transport errors and 5xx responses are retried with exponential backoff up
// to the configured retry limit; 4xx responses and undecodable payloads fail
// immediately. All failures are classified with the datalayer sentinels so
// gateway strategies can distinguish fetch failures from mapping failures.
type Client struct {
	baseURL              string
	httpClient           *http.Client
	requestTimeout       time.Duration
	maxRetries           uint64
	initialRetryInterval time.Duration
	maxRetryInterval     time.Duration
}

// Option defines a functional option for configuring the Client.
type Option func(*Client) error

// WithHTTPClient sets the underlying HTTP client, replacing http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}

		c.httpClient = httpClient

		return nil
	}
}

// WithRequestTimeout sets the per-request timeout applied to every attempt.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.requestTimeout = timeout
		return nil
	}
}

// WithMaxRetries sets how many times a failed request is retried.
// Zero disables retries, the first attempt is always made.
func WithMaxRetries(maxRetries uint64) Option {
	return func(c *Client) error {
		c.maxRetries = maxRetries
		return nil
	}
}

// WithRetryIntervals sets the initial and maximum backoff intervals between retries.
func WithRetryIntervals(initial time.Duration, maximum time.Duration) Option {
	return func(c *Client) error {
		c.initialRetryInterval = initial
		c.maxRetryInterval = maximum

		return nil
	}
}

// NewClient creates a new catalog API client for the given base URL with optional configuration.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	client := &Client{
		baseURL:              baseURL,
		httpClient:           http.DefaultClient,
		requestTimeout:       defaultRequestTimeout,
		maxRetries:           defaultMaxRetries,
		initialRetryInterval: defaultInitialRetryInterval,
		maxRetryInterval:     defaultMaxRetryInterval,
	}

	for _, option := range options {
		if err := option(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// FetchPopularTitles retrieves the catalog's current popular titles.
func (c *Client) FetchPopularTitles(ctx context.Context) (TitleRecordList, error) {
	var list TitleRecordList
	if err := c.getJSON(ctx, popularTitlesPath, &list); err != nil {
		return TitleRecordList{}, err
	}

	return list, nil
}

// FetchTitleDetails retrieves the full record for a single catalog title.
func (c *Client) FetchTitleDetails(ctx context.Context, titleID uuid.UUID) (TitleRecord, error) {
	var record TitleRecord
	if err := c.getJSON(ctx, titleDetailsPath+titleID.String(), &record); err != nil {
		return TitleRecord{}, err
	}

	return record, nil
}

// SearchTitles retrieves the titles matching the given search text.
func (c *Client) SearchTitles(ctx context.Context, searchText string) (TitleRecordList, error) {
	path := searchTitlesPath + "?" + searchQueryParam + "=" + url.QueryEscape(searchText)

	var list TitleRecordList
	if err := c.getJSON(ctx, path, &list); err != nil {
		return TitleRecordList{}, err
	}

	return list, nil
}

// FetchGenres retrieves the catalog's genre collection.
func (c *Client) FetchGenres(ctx context.Context) (GenreRecordList, error) {
	var list GenreRecordList
	if err := c.getJSON(ctx, genresPath, &list); err != nil {
		return GenreRecordList{}, err
	}

	return list, nil
}

// getJSON performs a GET request against the given path and decodes the
// response body into target, retrying transient failures with exponential
// backoff until the retry limit is reached or the caller's context ends.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	attempt := func() error {
		return c.doRequest(ctx, path, target)
	}

	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.InitialInterval = c.initialRetryInterval
	expBackOff.MaxInterval = c.maxRetryInterval
	expBackOff.MaxElapsedTime = 0 // attempts are bounded by maxRetries and the caller's context

	return backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(expBackOff, c.maxRetries), ctx))
}

func (c *Client) doRequest(ctx context.Context, path string, target any) error {
	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	request, buildErr := http.NewRequestWithContext(requestCtx, http.MethodGet, c.baseURL+path, nil)
	if buildErr != nil {
		return backoff.Permanent(errors.Join(datalayer.ErrRemoteFetchFailed, buildErr))
	}

	request.Header.Set("Accept", "application/json")

	response, doErr := c.httpClient.Do(request)
	if doErr != nil {
		return errors.Join(datalayer.ErrRemoteFetchFailed, doErr)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, response.Body) // drain so the connection can be reused
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode >= http.StatusInternalServerError:
		return errors.Join(datalayer.ErrRemoteFetchFailed, fmt.Errorf("unexpected status: %s", response.Status))

	case response.StatusCode != http.StatusOK:
		return backoff.Permanent(errors.Join(datalayer.ErrRemoteFetchFailed, fmt.Errorf("unexpected status: %s", response.Status)))
	}

	if decodeErr := jsoniter.ConfigFastest.NewDecoder(response.Body).Decode(target); decodeErr != nil {
		return backoff.Permanent(errors.Join(datalayer.ErrMappingFailed, decodeErr))
	}

	return nil
}
