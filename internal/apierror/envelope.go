package apierror

// Envelope is the JSON body of every error response.
type Envelope struct {
	Status string   `json:"status"`
	Errors []Detail `json:"errors"`
}

type Detail struct {
	Location    Location `json:"location"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

// Envelope renders the client-visible part of e.
func (e *Error) Envelope() Envelope {
	description := e.Description
	if e.Kind == KindDatabase {
		description = "Database error"
	}
	return Envelope{
		Status: e.Status,
		Errors: []Detail{{
			Location:    e.Location,
			Name:        e.Name,
			Description: description,
		}},
	}
}

// Render classifies err and returns the status code and body to send.
func Render(err error) (int, Envelope) {
	ae := Classify(err)
	return ae.HTTPStatus, ae.Envelope()
}
