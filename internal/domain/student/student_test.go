package student

import (
	"encoding/json"
	"testing"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromCreateRequest_Defaults(t *testing.T) {
	s := NewFromCreateRequest(CreateStudentRequest{
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 20 1234",
		CohortID:  "5B0F8E4C-3B1E-4D0C-9A57-6F2D1C1F9E21",
	})

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Ada", s.FirstName)
	assert.Equal(t, DefaultImage, s.Image)
	assert.Equal(t, "", s.LinkedinURL)
	assert.NotNil(t, s.Languages)
	assert.NotNil(t, s.Projects)
	assert.Equal(t, "5b0f8e4c-3b1e-4d0c-9a57-6f2d1c1f9e21", s.CohortID)
}

func TestApply_OnlyTouchesGivenFields(t *testing.T) {
	orig := NewFromCreateRequest(CreateStudentRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "1",
		Languages: []string{"English"},
		CohortID:  "5b0f8e4c-3b1e-4d0c-9a57-6f2d1c1f9e21",
	})

	name := "Augusta"
	langs := []string{"French", "Other"}

	got := orig.Apply(UpdateStudentRequest{FirstName: &name, Languages: &langs})

	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, []string{"French", "Other"}, got.Languages)
	assert.Equal(t, orig.LastName, got.LastName)
	assert.Equal(t, orig.Email, got.Email)
	assert.Equal(t, orig.CohortID, got.CohortID)
	assert.Equal(t, []string{"English"}, orig.Languages, "original untouched")
}

func TestLinked_JSONEmbedsCohort(t *testing.T) {
	s := Student{ID: "s1", CohortID: "c1"}

	b, err := json.Marshal(Linked{Student: s, Cohort: &cohort.Cohort{ID: "c1", Name: "Web Dev Berlin"}})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	embedded, ok := out["cohort"].(map[string]any)
	require.True(t, ok, "cohort should be an object, got %T", out["cohort"])
	assert.Equal(t, "c1", embedded["id"])

	b, err = json.Marshal(Linked{Student: s})
	require.NoError(t, err)

	out = map[string]any{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Contains(t, out, "cohort")
	assert.Nil(t, out["cohort"])
}
