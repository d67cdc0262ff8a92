package app

import (
	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
)

// Session carries one user's working state between audit steps. It is not
// safe for concurrent use; each request or command owns its own Session.
type Session struct {
	ID        core.ID
	CreatedAt core.Timestamp

	// Dataset is the working table. Cleaning and mitigation replace it.
	Dataset *table.Table

	TargetColumn     string
	SensitiveColumns []string

	// WeightedBy lists the columns the last Mitigate weighted by, empty when
	// it left the dataset unweighted.
	WeightedBy []string

	// Report is the most recent analysis, nil until Analyze succeeds.
	Report *audit.Report
}

// NewSession starts a session on an uploaded table.
func NewSession(t *table.Table) *Session {
	return &Session{
		ID:        core.NewID(),
		CreatedAt: core.Now(),
		Dataset:   t,
	}
}
