package client

// Musician is a volunteer musician profile in its API-facing shape.
type Musician struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Community              string `json:"community"`
	City                   string `json:"city"`
	Country                string `json:"country"`
	MusicCategory          string `json:"musicCategory"`
	Instrument             string `json:"instrument"`
	Bio                    string `json:"bio"`
	Contact                string `json:"contact"`
	CompensationPreference string `json:"compensationPreference"`
	Available              bool   `json:"available"`
	Performances           int    `json:"performances"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

// Request is a committee's request for musical support.
type Request struct {
	ID        string `json:"id"`
	Committee string `json:"committee"`
	Community string `json:"community"`
	Date      string `json:"date"`
	Needs     string `json:"needs"`
	Notes     string `json:"notes"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Response is a musician's reply to a request.
type Response struct {
	ID         string `json:"id"`
	RequestID  string `json:"requestId"`
	MusicianID string `json:"musicianId"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// Match pairs a request with its accepted musician. At most one active
// match per request, enforced by the accept flow, not the backend.
type Match struct {
	ID         string `json:"id"`
	RequestID  string `json:"requestId"`
	MusicianID string `json:"musicianId"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}
