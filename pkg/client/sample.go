package client

// Bundled fallback data shown when the API is unreachable or empty, so
// the app renders something meaningful on first deploy.

// SampleMusicians returns the fallback musician profiles.
func SampleMusicians() []Musician {
	return []Musician{
		{
			ID:                     "sample-musician-1",
			Name:                   "Leila Rahimi",
			Community:              "Paddington",
			City:                   "Sydney",
			Country:                "Australia",
			MusicCategory:          "Devotional",
			Instrument:             "Voice",
			Bio:                    "Sings devotional settings of the Hidden Words.",
			Contact:                "leila@example.org",
			CompensationPreference: "Volunteer",
			Available:              true,
			Performances:           12,
		},
		{
			ID:                     "sample-musician-2",
			Name:                   "Daniel Huang",
			Community:              "Brunswick",
			City:                   "Melbourne",
			Country:                "Australia",
			MusicCategory:          "Classical",
			Instrument:             "Guitar",
			Bio:                    "Classical guitarist, happy to accompany singers.",
			Contact:                "daniel@example.org",
			CompensationPreference: "Travel costs",
			Available:              true,
			Performances:           4,
		},
		{
			ID:                     "sample-musician-3",
			Name:                   "Sofia Mendes",
			Community:              "West End",
			City:                   "Brisbane",
			Country:                "Australia",
			MusicCategory:          "Folk",
			Instrument:             "Piano",
			Bio:                    "Plays piano for community devotionals and children's classes.",
			Contact:                "sofia@example.org",
			CompensationPreference: "Volunteer",
			Available:              false,
			Performances:           8,
		},
	}
}

// SampleRequests returns the fallback committee requests.
func SampleRequests() []Request {
	return []Request{
		{
			ID:        "sample-request-1",
			Committee: "Feast Committee Paddington",
			Community: "Paddington",
			Date:      "2026-09-27",
			Needs:     "Two devotional songs for the Feast of Mashíyyat",
			Notes:     "Program runs 45 minutes",
			Status:    "Open",
		},
		{
			ID:        "sample-request-2",
			Committee: "Holy Day Committee Brunswick",
			Community: "Brunswick",
			Date:      "2026-10-20",
			Needs:     "Instrumental prelude for the Birth of the Báb",
			Status:    "Confirmed",
		},
	}
}

// SampleResponses returns the fallback musician responses.
func SampleResponses() []Response {
	return []Response{
		{
			ID:         "sample-response-1",
			RequestID:  "sample-request-1",
			MusicianID: "sample-musician-1",
			Message:    "Happy to help, I can prepare two pieces.",
			Status:     "Pending",
		},
	}
}
