package ticketmaster

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// noResultsMessage is rendered for an empty result set regardless of mode.
const noResultsMessage = "No results found."

// Format renders results as human-readable text. When detailed is false each
// item collapses to a one-line summary.
func Format(results Results, detailed bool) string {
	if results.Len() == 0 {
		return noResultsMessage
	}

	switch results.Type {
	case SearchTypeVenue:
		return FormatVenues(results.Venues, detailed)
	case SearchTypeAttraction:
		return FormatAttractions(results.Attractions, detailed)
	default:
		return FormatEvents(results.Events, detailed)
	}
}

// FormatEvents renders events as text blocks separated by blank lines.
func FormatEvents(events []Event, detailed bool) string {
	if len(events) == 0 {
		return noResultsMessage
	}

	blocks := make([]string, 0, len(events))
	for _, event := range events {
		blocks = append(blocks, formatEvent(event, detailed))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatVenues renders venues as text blocks separated by blank lines.
func FormatVenues(venues []Venue, detailed bool) string {
	if len(venues) == 0 {
		return noResultsMessage
	}

	blocks := make([]string, 0, len(venues))
	for _, venue := range venues {
		blocks = append(blocks, formatVenue(venue, detailed))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatAttractions renders attractions as text blocks separated by blank lines.
func FormatAttractions(attractions []Attraction, detailed bool) string {
	if len(attractions) == 0 {
		return noResultsMessage
	}

	blocks := make([]string, 0, len(attractions))
	for _, attraction := range attractions {
		blocks = append(blocks, formatAttraction(attraction, detailed))
	}
	return strings.Join(blocks, "\n\n")
}

func formatEvent(event Event, detailed bool) string {
	date := eventDate(event)

	if !detailed {
		return fmt.Sprintf("%s - %s", event.Name, date)
	}

	lines := []string{event.Name}

	if event.Dates.Start.LocalTime != "" {
		lines = append(lines, fmt.Sprintf("Date: %s at %s", date, event.Dates.Start.LocalTime))
	} else if date != "" {
		lines = append(lines, fmt.Sprintf("Date: %s", date))
	}

	if event.Embedded != nil && len(event.Embedded.Venues) > 0 {
		venue := event.Embedded.Venues[0]
		lines = append(lines, fmt.Sprintf("Venue: %s - %s, %s", venue.Name, venue.City.Name, venue.State.StateCode))
	}

	// Price is the one field that renders a placeholder when absent.
	if len(event.PriceRanges) > 0 {
		price := event.PriceRanges[0]
		lines = append(lines, fmt.Sprintf("Price: %s %s-%s", price.Currency, formatAmount(price.Min), formatAmount(price.Max)))
	} else {
		lines = append(lines, "Price: TBA")
	}

	if event.Dates.Status.Code != "" {
		lines = append(lines, fmt.Sprintf("Status: %s", event.Dates.Status.Code))
	}
	if event.URL != "" {
		lines = append(lines, fmt.Sprintf("More info: %s", event.URL))
	}

	return strings.Join(lines, "\n")
}

func formatVenue(venue Venue, detailed bool) string {
	if !detailed {
		return venue.Name
	}

	lines := []string{venue.Name}

	if venue.Address.Line1 != "" {
		lines = append(lines, fmt.Sprintf("Location: %s", venue.Address.Line1))
	}
	if locality := venueLocality(venue); locality != "" {
		lines = append(lines, locality)
	}
	if venue.Country.Name != "" {
		lines = append(lines, venue.Country.Name)
	}
	if venue.URL != "" {
		lines = append(lines, fmt.Sprintf("More info: %s", venue.URL))
	}

	return strings.Join(lines, "\n")
}

func formatAttraction(attraction Attraction, detailed bool) string {
	if !detailed {
		return attraction.Name
	}

	lines := []string{attraction.Name}

	if len(attraction.Classifications) > 0 {
		classification := attraction.Classifications[0]
		lines = append(lines, fmt.Sprintf("Type: %s - %s", classification.Segment.Name, classification.Genre.Name))
	}
	if attraction.URL != "" {
		lines = append(lines, fmt.Sprintf("More info: %s", attraction.URL))
	}

	return strings.Join(lines, "\n")
}

// eventDate renders the event's start as a calendar date, falling back to
// the upstream local date string when the timestamp does not parse.
func eventDate(event Event) string {
	if t, err := time.Parse(time.RFC3339, event.Dates.Start.DateTime); err == nil {
		return t.UTC().Format("Jan 2, 2006")
	}
	return event.Dates.Start.LocalDate
}

// formatAmount renders a price without trailing zeros (25 not 25.00).
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// venueLocality renders "City, ST 12345" from whichever parts are present.
func venueLocality(venue Venue) string {
	parts := make([]string, 0, 2)
	if venue.City.Name != "" {
		parts = append(parts, venue.City.Name)
	}

	region := strings.TrimSpace(venue.State.StateCode + " " + venue.PostalCode)
	if region != "" {
		parts = append(parts, region)
	}

	return strings.Join(parts, ", ")
}
