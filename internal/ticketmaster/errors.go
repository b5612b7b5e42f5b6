package ticketmaster

// defaultFaultMessage is used when the API does not supply a fault string.
const defaultFaultMessage = "Failed to fetch results"

// APIError represents a failed Discovery API exchange. Code and Status are
// optional: Code is only present when the API returned a fault body, Status
// only when an HTTP response was received at all.
type APIError struct {
	Message string
	Code    string
	Status  int
}

// Error returns the error message
func (e *APIError) Error() string {
	return e.Message
}

// apiFault is the wire shape of a Discovery API error body.
type apiFault struct {
	Fault struct {
		Faultstring string `json:"faultstring"`
		Detail      struct {
			Errorcode string `json:"errorcode"`
		} `json:"detail"`
	} `json:"fault"`
}
