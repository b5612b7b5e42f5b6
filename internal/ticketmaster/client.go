package ticketmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultBaseURL  = "https://app.ticketmaster.com/discovery/v2"
	defaultPageSize = 20

	// dateTimeLayout is the Discovery API's timestamp format: RFC 3339
	// without sub-second precision, always UTC.
	dateTimeLayout = "2006-01-02T15:04:05Z"
)

// Client calls the Ticketmaster Discovery API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Discovery API base URL. Used by tests to point
// the client at a stub server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client used for upstream calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Discovery API client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SearchQuery holds the caller-supplied search parameters. Zero-valued
// fields are left out of the upstream request.
type SearchQuery struct {
	Keyword            string
	StartDateTime      *time.Time
	EndDateTime        *time.Time
	City               string
	StateCode          string
	CountryCode        string
	VenueID            string
	AttractionID       string
	ClassificationName string
	Size               int
}

// Search performs a single Discovery API search for the given type. A
// response without an embedded result array yields empty Results, not an
// error: the API legitimately returns zero matches that way.
func (c *Client) Search(ctx context.Context, searchType SearchType, query SearchQuery) (Results, error) {
	if !searchType.Valid() {
		return Results{}, errors.Errorf("invalid search type: %s", searchType)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, searchType.Plural())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Results{}, errors.Wrap(err, "error building request")
	}
	req.URL.RawQuery = c.buildParams(query).Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The exchange never produced a response; surface the generic
		// fault with no status code.
		return Results{}, &APIError{Message: defaultFaultMessage}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Results{}, apiErrorFromResponse(resp)
	}

	var body discoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Results{}, errors.Wrap(err, "error decoding response")
	}

	results := Results{Type: searchType}
	if body.Embedded != nil {
		results.Events = body.Embedded.Events
		results.Venues = body.Embedded.Venues
		results.Attractions = body.Embedded.Attractions
	}

	return results, nil
}

// SearchEvents searches for events.
func (c *Client) SearchEvents(ctx context.Context, query SearchQuery) (Results, error) {
	return c.Search(ctx, SearchTypeEvent, query)
}

// SearchVenues searches for venues.
func (c *Client) SearchVenues(ctx context.Context, query SearchQuery) (Results, error) {
	return c.Search(ctx, SearchTypeVenue, query)
}

// SearchAttractions searches for attractions.
func (c *Client) SearchAttractions(ctx context.Context, query SearchQuery) (Results, error) {
	return c.Search(ctx, SearchTypeAttraction, query)
}

// buildParams flattens a SearchQuery into the upstream parameter set. The
// API key and page size are always present; everything else only when set.
// A date range is emitted only when both bounds are present.
func (c *Client) buildParams(query SearchQuery) url.Values {
	params := url.Values{}
	params.Set("apikey", c.apiKey)

	size := query.Size
	if size <= 0 {
		size = defaultPageSize
	}
	params.Set("size", strconv.Itoa(size))

	if query.Keyword != "" {
		params.Set("keyword", query.Keyword)
	}
	if query.StartDateTime != nil && query.EndDateTime != nil {
		start, end := formatDateRange(*query.StartDateTime, *query.EndDateTime)
		params.Set("startDateTime", start)
		params.Set("endDateTime", end)
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.StateCode != "" {
		params.Set("stateCode", query.StateCode)
	}
	if query.CountryCode != "" {
		params.Set("countryCode", query.CountryCode)
	}
	if query.VenueID != "" {
		params.Set("venueId", query.VenueID)
	}
	if query.AttractionID != "" {
		params.Set("attractionId", query.AttractionID)
	}
	if query.ClassificationName != "" {
		params.Set("classificationName", query.ClassificationName)
	}

	return params
}

// formatDateRange clamps the range to whole UTC calendar days: start of day
// for the lower bound, end of day for the upper bound.
func formatDateRange(start, end time.Time) (string, string) {
	start = start.UTC()
	end = end.UTC()

	lower := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	upper := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)

	return lower.Format(dateTimeLayout), upper.Format(dateTimeLayout)
}

// apiErrorFromResponse builds an APIError from a non-2xx response, taking
// the fault string and error code from the body when present.
func apiErrorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{
		Message: defaultFaultMessage,
		Status:  resp.StatusCode,
	}

	var fault apiFault
	if err := json.NewDecoder(resp.Body).Decode(&fault); err == nil && fault.Fault.Faultstring != "" {
		apiErr.Message = fault.Fault.Faultstring
		apiErr.Code = fault.Fault.Detail.Errorcode
	}

	return apiErr
}
