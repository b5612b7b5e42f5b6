package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/ticketmaster"
)

const (
	searchToolName = "search_ticketmaster"

	formatJSON = "json"
	formatText = "text"

	// dateLayout is the wire format for startDate/endDate arguments.
	dateLayout = "2006-01-02"
)

// searchToolDefinition returns the descriptor for the single advertised tool.
func searchToolDefinition() shared.Tool {
	return shared.Tool{
		Name:        searchToolName,
		Description: "Search for events, venues, or attractions on Ticketmaster",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"event", "venue", "attraction"},
					"description": "Type of search to perform",
				},
				"keyword": map[string]interface{}{
					"type":        "string",
					"description": "Search keyword or term",
				},
				"startDate": map[string]interface{}{
					"type":        "string",
					"description": "Start date in YYYY-MM-DD format",
				},
				"endDate": map[string]interface{}{
					"type":        "string",
					"description": "End date in YYYY-MM-DD format",
				},
				"city": map[string]interface{}{
					"type":        "string",
					"description": "City name",
				},
				"stateCode": map[string]interface{}{
					"type":        "string",
					"description": "State code (e.g., NY, CA)",
				},
				"countryCode": map[string]interface{}{
					"type":        "string",
					"description": "Country code (e.g., US, CA)",
				},
				"venueId": map[string]interface{}{
					"type":        "string",
					"description": "Specific venue ID to search",
				},
				"attractionId": map[string]interface{}{
					"type":        "string",
					"description": "Specific attraction ID to search",
				},
				"classificationName": map[string]interface{}{
					"type":        "string",
					"description": "Event classification/category (e.g., \"Sports\", \"Music\")",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{formatJSON, formatText},
					"description": "Output format (defaults to json)",
					"default":     formatJSON,
				},
			},
			"required": []string{"type"},
		},
	}
}

// searchArgs is the typed form of the search tool's arguments.
type searchArgs struct {
	Type               string `json:"type"`
	Keyword            string `json:"keyword"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	City               string `json:"city"`
	StateCode          string `json:"stateCode"`
	CountryCode        string `json:"countryCode"`
	VenueID            string `json:"venueId"`
	AttractionID       string `json:"attractionId"`
	ClassificationName string `json:"classificationName"`
	Format             string `json:"format"`
}

// decodeSearchArgs validates the raw argument payload against the tool's
// schema before any search logic runs. A payload that does not decode, or
// that omits the required type field, is a caller error.
func decodeSearchArgs(raw json.RawMessage) (searchArgs, error) {
	var args searchArgs
	if len(raw) == 0 {
		return args, errors.New("missing arguments")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, errors.Wrap(err, "invalid arguments")
	}
	if args.Type == "" {
		return args, errors.New("missing required argument: type")
	}
	if args.Format == "" {
		args.Format = formatJSON
	}
	return args, nil
}

// runSearch executes one search and wraps the outcome, success or failure,
// in a CallToolResult. No error escapes this function.
func (g *Gateway) runSearch(ctx context.Context, searchType ticketmaster.SearchType, args searchArgs) shared.CallToolResult {
	query := ticketmaster.SearchQuery{
		Keyword:            args.Keyword,
		StartDateTime:      parseDate(args.StartDate),
		EndDateTime:        parseDate(args.EndDate),
		City:               args.City,
		StateCode:          args.StateCode,
		CountryCode:        args.CountryCode,
		VenueID:            args.VenueID,
		AttractionID:       args.AttractionID,
		ClassificationName: args.ClassificationName,
	}

	var (
		results ticketmaster.Results
		err     error
	)
	switch searchType {
	case ticketmaster.SearchTypeVenue:
		results, err = g.client.SearchVenues(ctx, query)
	case ticketmaster.SearchTypeAttraction:
		results, err = g.client.SearchAttractions(ctx, query)
	default:
		results, err = g.client.SearchEvents(ctx, query)
	}
	if err != nil {
		g.logger.Error("search failed", logging.Fields{
			"type":  string(searchType),
			"error": err.Error(),
		})
		return errorResult(err)
	}

	text, err := encodeResults(results, args.Format)
	if err != nil {
		return errorResult(err)
	}

	return shared.CallToolResult{
		Content: []shared.Content{shared.NewTextContent(text)},
	}
}

// encodeResults renders results in the requested output format: text runs
// through the formatter, anything else gets the full-fidelity JSON encoding.
func encodeResults(results ticketmaster.Results, format string) (string, error) {
	if format == formatText {
		return ticketmaster.Format(results, true), nil
	}

	data, err := json.MarshalIndent(results.Items(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "error encoding results")
	}
	return string(data), nil
}

// errorResult wraps a failure in a well-formed tool response with the error
// flag set.
func errorResult(err error) shared.CallToolResult {
	return shared.CallToolResult{
		Content: []shared.Content{shared.NewTextContent("Error: " + err.Error())},
		IsError: true,
	}
}

// parseDate parses a YYYY-MM-DD argument. Unparseable values yield nil so
// the range is dropped rather than the request rejected; this leniency is
// part of the wire contract.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
