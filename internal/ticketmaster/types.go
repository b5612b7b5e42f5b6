// Package ticketmaster provides a client for the Ticketmaster Discovery API.
package ticketmaster

// SearchType identifies the kind of resource a search targets.
type SearchType string

// Supported search types
const (
	SearchTypeEvent      SearchType = "event"
	SearchTypeVenue      SearchType = "venue"
	SearchTypeAttraction SearchType = "attraction"
)

// Valid reports whether the search type is one of the supported kinds.
func (t SearchType) Valid() bool {
	switch t {
	case SearchTypeEvent, SearchTypeVenue, SearchTypeAttraction:
		return true
	}
	return false
}

// Plural returns the resource path segment and embedded field name for the
// type ("events", "venues", "attractions").
func (t SearchType) Plural() string {
	return string(t) + "s"
}

// Event represents an event returned by the Discovery API.
type Event struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type,omitempty"`
	URL         string         `json:"url,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	Dates       EventDates     `json:"dates"`
	PriceRanges []PriceRange   `json:"priceRanges,omitempty"`
	Images      []Image        `json:"images,omitempty"`
	Embedded    *EventEmbedded `json:"_embedded,omitempty"`
}

// EventDates holds scheduling information for an event.
type EventDates struct {
	Start    EventStart  `json:"start"`
	Timezone string      `json:"timezone,omitempty"`
	Status   EventStatus `json:"status"`
}

// EventStart holds the start date and time of an event.
type EventStart struct {
	LocalDate string `json:"localDate,omitempty"`
	LocalTime string `json:"localTime,omitempty"`
	DateTime  string `json:"dateTime,omitempty"`
}

// EventStatus holds the sale status code of an event (e.g. "onsale").
type EventStatus struct {
	Code string `json:"code,omitempty"`
}

// PriceRange describes a price band for an event.
type PriceRange struct {
	Type     string  `json:"type,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Image is an image asset attached to an event or attraction.
type Image struct {
	Ratio  string `json:"ratio,omitempty"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// EventEmbedded carries resources nested under an event.
type EventEmbedded struct {
	Venues      []Venue      `json:"venues,omitempty"`
	Attractions []Attraction `json:"attractions,omitempty"`
}

// Venue represents a venue returned by the Discovery API.
type Venue struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	URL        string    `json:"url,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	Timezone   string    `json:"timezone,omitempty"`
	City       City      `json:"city"`
	State      State     `json:"state"`
	Country    Country   `json:"country"`
	Address    Address   `json:"address"`
	Location   *Location `json:"location,omitempty"`
}

// City is a venue's city.
type City struct {
	Name string `json:"name"`
}

// State is a venue's state or province.
type State struct {
	Name      string `json:"name,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// Country is a venue's country.
type Country struct {
	Name        string `json:"name,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// Address is a venue's street address.
type Address struct {
	Line1 string `json:"line1,omitempty"`
}

// Location holds a venue's geocoordinates.
type Location struct {
	Longitude string `json:"longitude"`
	Latitude  string `json:"latitude"`
}

// Attraction represents an attraction returned by the Discovery API.
type Attraction struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            string           `json:"type,omitempty"`
	URL             string           `json:"url,omitempty"`
	Locale          string           `json:"locale,omitempty"`
	Images          []Image          `json:"images,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
}

// Classification categorizes an attraction by segment and genre.
type Classification struct {
	Primary bool     `json:"primary,omitempty"`
	Segment Category `json:"segment"`
	Genre   Category `json:"genre"`
}

// Category is a named classification entry.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Results is the tagged union returned by Search: exactly the slice matching
// Type is populated, the other two stay nil.
type Results struct {
	Type        SearchType
	Events      []Event
	Venues      []Venue
	Attractions []Attraction
}

// Len returns the number of items in the populated variant.
func (r Results) Len() int {
	switch r.Type {
	case SearchTypeEvent:
		return len(r.Events)
	case SearchTypeVenue:
		return len(r.Venues)
	case SearchTypeAttraction:
		return len(r.Attractions)
	}
	return 0
}

// Items returns the populated variant slice for serialization. An empty
// variant comes back as a non-nil empty slice so it encodes as [].
func (r Results) Items() interface{} {
	switch r.Type {
	case SearchTypeVenue:
		if r.Venues == nil {
			return []Venue{}
		}
		return r.Venues
	case SearchTypeAttraction:
		if r.Attractions == nil {
			return []Attraction{}
		}
		return r.Attractions
	default:
		if r.Events == nil {
			return []Event{}
		}
		return r.Events
	}
}

// discoveryResponse is the wire shape of a Discovery API search response.
// The pagination block is decoded but otherwise ignored.
type discoveryResponse struct {
	Embedded *struct {
		Events      []Event      `json:"events,omitempty"`
		Venues      []Venue      `json:"venues,omitempty"`
		Attractions []Attraction `json:"attractions,omitempty"`
	} `json:"_embedded,omitempty"`
	Page struct {
		Size          int `json:"size"`
		TotalElements int `json:"totalElements"`
		TotalPages    int `json:"totalPages"`
		Number        int `json:"number"`
	} `json:"page"`
}
