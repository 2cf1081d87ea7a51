package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/history"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/response"
	"github.com/stemsi/exstem-prep/internal/service"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
)

// SessionHandler exposes the session engine over HTTP.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// GetState godoc
// GET /api/v1/state
func (h *SessionHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"state": h.sessionService.State()})
}

// StartExam godoc
// POST /api/v1/exam/start
// Draws a new exam and starts the countdown.
func (h *SessionHandler) StartExam(c *gin.Context) {
	h.respond(c, http.StatusCreated)(h.sessionService.StartExam(c.Request.Context()))
}

// SubmitExam godoc
// POST /api/v1/exam/submit
// Finalizes the exam, or asks for confirmation while questions are flagged.
func (h *SessionHandler) SubmitExam(c *gin.Context) {
	var req model.SubmitExamRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c, http.StatusOK)(h.sessionService.SubmitExam(c.Request.Context(), req.Bypass))
}

// ConfirmSubmit godoc
// POST /api/v1/exam/submit/confirm
func (h *SessionHandler) ConfirmSubmit(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.ConfirmSubmit(c.Request.Context()))
}

// CancelSubmit godoc
// POST /api/v1/exam/submit/cancel
func (h *SessionHandler) CancelSubmit(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.CancelSubmit())
}

// JumpToFlagged godoc
// POST /api/v1/exam/submit/jump-flagged
func (h *SessionHandler) JumpToFlagged(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.JumpToFlagged())
}

// ConfigurePractice godoc
// POST /api/v1/practice/configure
func (h *SessionHandler) ConfigurePractice(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.ConfigurePractice())
}

// StartPractice godoc
// POST /api/v1/practice/start
func (h *SessionHandler) StartPractice(c *gin.Context) {
	var req model.StartPracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c, http.StatusCreated)(h.sessionService.StartPractice(c.Request.Context(), req.Size))
}

// FinishPractice godoc
// POST /api/v1/practice/finish
func (h *SessionHandler) FinishPractice(c *gin.Context) {
	var req model.FinishPracticeRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c, http.StatusOK)(h.sessionService.FinishPractice(c.Request.Context(), req.Confirm))
}

// Answer godoc
// POST /api/v1/session/answer
// Records the option at a display position for the current question.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c, http.StatusOK)(h.sessionService.Answer(c.Request.Context(), *req.Display))
}

// ToggleFlag godoc
// POST /api/v1/session/flag
func (h *SessionHandler) ToggleFlag(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.ToggleFlag(c.Request.Context()))
}

// Navigate godoc
// POST /api/v1/session/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c, http.StatusOK)(h.sessionService.Navigate(*req.Index))
}

// Next godoc
// POST /api/v1/session/next
func (h *SessionHandler) Next(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.Next())
}

// Prev godoc
// POST /api/v1/session/prev
func (h *SessionHandler) Prev(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.Prev())
}

// ExportCSV godoc
// GET /api/v1/session/export.csv
func (h *SessionHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.sessionService.ExportCSV(&buf); err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("session-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// OpenHistory godoc
// POST /api/v1/history
// Switches the session to the history list.
func (h *SessionHandler) OpenHistory(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.sessionService.OpenHistory(c.Request.Context()))
}

// ListHistory godoc
// GET /api/v1/history
// Pages through stored exams, newest first. Does not change the session.
func (h *SessionHandler) ListHistory(c *gin.Context) {
	var q model.HistoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = 20
	}

	items, err := h.sessionService.ListHistory(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	page := response.NewPagination(q.Page, q.PerPage, len(items))
	start, end := page.Bounds()
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"history": items[start:end]}, page)
}

// ReviewHistory godoc
// POST /api/v1/history/:entry_id/review
func (h *SessionHandler) ReviewHistory(c *gin.Context) {
	entryID := c.Param("entry_id")
	if entryID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	h.respond(c, http.StatusOK)(h.sessionService.Review(c.Request.Context(), entryID))
}

// Home godoc
// POST /api/v1/home
// Returns to the landing screen. An exam in progress is abandoned.
func (h *SessionHandler) Home(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"state": h.sessionService.Home(c.Request.Context())})
}

func (h *SessionHandler) respond(c *gin.Context, status int) func(session.View, error) {
	return func(view session.View, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Success(c, status, gin.H{"state": view})
	}
}

// fail maps engine errors onto the response envelope.
func (h *SessionHandler) fail(c *gin.Context, err error) {
	var unanswered *session.UnansweredError

	switch {
	case errors.As(err, &unanswered):
		response.FailWithFields(c, http.StatusConflict, response.ErrUnansweredRemaining, map[string]string{
			"unanswered": strconv.Itoa(unanswered.Counts.Unanswered),
			"answered":   strconv.Itoa(unanswered.Counts.Answered),
			"total":      strconv.Itoa(unanswered.Counts.Total),
		})
	case errors.Is(err, session.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, session.ErrNoAnswers):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoAnswers)
	case errors.Is(err, session.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, session.ErrNoQuestion):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, history.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Session operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
