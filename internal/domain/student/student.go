package student

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/google/uuid"
)

const DefaultImage = "https://i.imgur.com/r8bo8u7.png"

var (
	ErrNotFound  = errors.New("student not found")
	ErrDuplicate = errors.New("student email or phone already in use")
)

var (
	Languages = []string{"English", "Spanish", "French", "German", "Portuguese", "Dutch", "Other"}
	Programs  = []string{"Web Dev", "UX/UI", "Data Analytics", "Cybersecurity"}
)

type Student struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	LinkedinURL string    `json:"linkedinUrl"`
	Languages   []string  `json:"languages"`
	Program     string    `json:"program,omitempty"`
	Background  string    `json:"background"`
	Image       string    `json:"image"`
	CohortID    string    `json:"cohort"`
	Projects    []any     `json:"projects"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Linked is the read view: the cohort id is replaced by the cohort itself,
// or null when the referenced cohort no longer exists.
// Cohort shadows the embedded CohortID under the same "cohort" JSON key.
type Linked struct {
	Student
	Cohort *cohort.Cohort `json:"cohort"`
}

type CreateStudentRequest struct {
	FirstName   string   `json:"firstName" binding:"required,max=80"`
	LastName    string   `json:"lastName" binding:"required,max=80"`
	Email       string   `json:"email" binding:"required,email,max=254"`
	Phone       string   `json:"phone" binding:"required,max=40"`
	LinkedinURL string   `json:"linkedinUrl" binding:"omitempty,url"`
	Languages   []string `json:"languages" binding:"omitempty,unique,dive,oneof=English Spanish French German Portuguese Dutch Other"`
	Program     string   `json:"program" binding:"omitempty,oneof='Web Dev' 'UX/UI' 'Data Analytics' Cybersecurity"`
	Background  string   `json:"background" binding:"omitempty,max=2000"`
	Image       string   `json:"image" binding:"omitempty,url"`
	CohortID    string   `json:"cohort" binding:"required,uuid"`
	Projects    []any    `json:"projects"`
}

// UpdateStudentRequest is a partial update; nil fields keep their stored value.
type UpdateStudentRequest struct {
	FirstName   *string   `json:"firstName" binding:"omitempty,min=1,max=80"`
	LastName    *string   `json:"lastName" binding:"omitempty,min=1,max=80"`
	Email       *string   `json:"email" binding:"omitempty,email,max=254"`
	Phone       *string   `json:"phone" binding:"omitempty,min=1,max=40"`
	LinkedinURL *string   `json:"linkedinUrl" binding:"omitempty,url"`
	Languages   *[]string `json:"languages" binding:"omitempty,unique,dive,oneof=English Spanish French German Portuguese Dutch Other"`
	Program     *string   `json:"program" binding:"omitempty,oneof='Web Dev' 'UX/UI' 'Data Analytics' Cybersecurity"`
	Background  *string   `json:"background" binding:"omitempty,max=2000"`
	Image       *string   `json:"image" binding:"omitempty,url"`
	CohortID    *string   `json:"cohort" binding:"omitempty,uuid"`
	Projects    *[]any    `json:"projects"`
}

// A factory to build a Student from the incoming DTO, applying trims and defaults.
func NewFromCreateRequest(req CreateStudentRequest) Student {
	now := time.Now().UTC()

	s := Student{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		LinkedinURL: req.LinkedinURL,
		Languages:   req.Languages,
		Program:     req.Program,
		Background:  req.Background,
		Image:       req.Image,
		CohortID:    strings.ToLower(req.CohortID),
		Projects:    req.Projects,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.Image == "" {
		s.Image = DefaultImage
	}
	if s.Languages == nil {
		s.Languages = []string{}
	}
	if s.Projects == nil {
		s.Projects = []any{}
	}

	return s
}

// Apply merges a partial update into s.
func (s Student) Apply(req UpdateStudentRequest) Student {
	if req.FirstName != nil {
		s.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		s.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		s.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		s.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.LinkedinURL != nil {
		s.LinkedinURL = *req.LinkedinURL
	}
	if req.Languages != nil {
		s.Languages = append([]string{}, (*req.Languages)...)
	}
	if req.Program != nil {
		s.Program = *req.Program
	}
	if req.Background != nil {
		s.Background = *req.Background
	}
	if req.Image != nil {
		s.Image = *req.Image
	}
	if req.CohortID != nil {
		s.CohortID = strings.ToLower(*req.CohortID)
	}
	if req.Projects != nil {
		s.Projects = append([]any{}, (*req.Projects)...)
	}

	s.UpdatedAt = time.Now().UTC()

	return s
}
