package cohort

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("cohort not found")

// Cohort owns students. The roster only ever reads it by id; rows are loaded by the seed command.
type Cohort struct {
	ID        string     `json:"id"`
	Slug      string     `json:"cohortSlug"`
	Name      string     `json:"cohortName"`
	Program   string     `json:"program,omitempty"`
	Campus    string     `json:"campus,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

var slugNamespace = uuid.MustParse("5b0f8e4c-3b1e-4d0c-9a57-6f2d1c1f9e21")

// IDFromSlug derives a stable id so seed files can be re-applied without duplicating cohorts.
func IDFromSlug(slug string) string {
	return uuid.NewSHA1(slugNamespace, []byte(slug)).String()
}
