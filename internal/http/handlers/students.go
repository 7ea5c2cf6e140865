package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudentStore interface {
	Create(ctx context.Context, req student.CreateStudentRequest) (student.Student, error)
	List(ctx context.Context) ([]student.Student, error)
	ListByCohort(ctx context.Context, cohortID string) ([]student.Student, error)
	GetByID(ctx context.Context, id string) (student.Student, error)
	Update(ctx context.Context, id string, req student.UpdateStudentRequest) (student.Student, error)
	Delete(ctx context.Context, id string) error
}

type StudentLinker interface {
	Link(ctx context.Context, s student.Student) (student.Linked, error)
	LinkAll(ctx context.Context, students []student.Student) ([]student.Linked, error)
}

type StudentsHandler struct {
	repo   StudentStore
	linker StudentLinker
}

func NewStudentsHandler(repo StudentStore, linker StudentLinker) *StudentsHandler {
	return &StudentsHandler{repo: repo, linker: linker}
}

func (h *StudentsHandler) CreateStudent(ctx *gin.Context) {
	var req student.CreateStudentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.repo.Create(cctx, req)
	if err != nil {
		h.writeStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *StudentsHandler) ListStudents(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	students, err := h.repo.List(cctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	linked, err := h.linker.LinkAll(cctx, students)
	if err != nil {
		fail(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, linked)
}

func (h *StudentsHandler) ListByCohort(ctx *gin.Context) {
	cohortID := strings.ToLower(strings.TrimSpace(ctx.Param("id")))
	if uuid.Validate(cohortID) != nil {
		RespondBadRequest(ctx, "Invalid cohort id", gin.H{"fields": []FieldError{{
			Field:   "id",
			Rule:    "uuid",
			Message: validationMessage("uuid", ""),
		}}})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	students, err := h.repo.ListByCohort(cctx, cohortID)
	if err != nil {
		fail(ctx, err)
		return
	}

	linked, err := h.linker.LinkAll(cctx, students)
	if err != nil {
		fail(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, linked)
}

func (h *StudentsHandler) GetStudentByID(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	s, err := h.repo.GetByID(cctx, studentID(ctx))
	if err != nil {
		h.writeStoreError(ctx, err)
		return
	}

	linked, err := h.linker.Link(cctx, s)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, linked)
}

func (h *StudentsHandler) UpdateStudent(ctx *gin.Context) {
	var req student.UpdateStudentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.repo.Update(cctx, studentID(ctx), req)
	if err != nil {
		h.writeStoreError(ctx, err)
		return
	}

	linked, err := h.linker.Link(cctx, s)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, linked)
}

func (h *StudentsHandler) DeleteStudent(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, studentID(ctx)); err != nil {
		h.writeStoreError(ctx, err)
		return
	}

	ctx.Status(http.StatusOK)
}

// studentID normalizes the path id; stored ids are lower-case uuids.
func studentID(ctx *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(ctx.Param("id")))
}

func (h *StudentsHandler) writeStoreError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, student.ErrNotFound):
		RespondNotFound(ctx, "Student not found")
	case errors.Is(err, student.ErrDuplicate):
		RespondConflict(ctx, "duplicate_student", "A student with this email or phone already exists")
	default:
		fail(ctx, err)
	}
}
