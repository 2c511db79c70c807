package domain

import "time"

// Report is a physician summary of one session.
type Report struct {
	// ID identifies the report.
	ID string

	// SessionID is the summarised session.
	SessionID string

	// DisplayName is the patient display name on the report.
	DisplayName string

	// Text is the generated summary.
	Text string

	// Location is where the report writer stored the rendered artifact.
	Location string

	// CreatedAt is when the report was written.
	CreatedAt time.Time
}

// DefaultDisplayName is used when no patient name is supplied.
const DefaultDisplayName = "Unknown"
