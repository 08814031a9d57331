package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/feedback-backend/internal/models"
	"github.com/AnshRaj112/feedback-backend/internal/notify"
	"github.com/AnshRaj112/feedback-backend/internal/store"
	"github.com/AnshRaj112/feedback-backend/pkg/metrics"
)

const maxFeedbackBodyBytes = 1 << 20

// Response messages.
const (
	msgInvalidBody     = "Invalid request body"
	msgMissingFields   = "Please fill in all required fields"
	msgStoreFailure    = "Failed to save feedback"
	msgSavedAndEmailed = "Feedback saved and confirmation emails sent!"
	msgSavedNoEmail    = "Feedback saved, but confirmation emails could not be sent."
	msgSaved           = "Feedback saved successfully. Thank you!"
)

// SubmitFeedbackRequest represents the request to submit feedback
type SubmitFeedbackRequest struct {
	Category    string      `json:"category"`
	Rating      RatingInput `json:"rating"`
	Feedback    string      `json:"feedback"`
	Improvement string      `json:"improvement"`
	Email       string      `json:"email"`
}

// SubmitFeedbackResponse represents the response after submitting feedback
type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MissingFields marks which required fields were absent or empty.
type MissingFields struct {
	Category bool `json:"category"`
	Rating   bool `json:"rating"`
	Feedback bool `json:"feedback"`
	Email    bool `json:"email"`
}

// Any reports whether at least one required field is missing.
func (m MissingFields) Any() bool {
	return m.Category || m.Rating || m.Feedback || m.Email
}

// MissingFieldsResponse is returned when required fields are missing.
type MissingFieldsResponse struct {
	Success       bool          `json:"success"`
	Error         string        `json:"error"`
	MissingFields MissingFields `json:"missingFields"`
}

// ErrorResponse is returned when the submission could not be saved.
// ValidationErrors is null unless the record failed schema validation.
type ErrorResponse struct {
	Success          bool               `json:"success"`
	Error            string             `json:"error"`
	ValidationErrors []store.FieldError `json:"validationErrors"`
}

// BadRequestResponse is returned for bodies that are not a feedback object.
type BadRequestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FeedbackSaver persists a validated record.
type FeedbackSaver interface {
	Insert(ctx context.Context, rec models.Feedback) (models.Feedback, error)
}

// SubmissionNotifier sends the emails for a stored record.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, rec models.Feedback) []notify.Delivery
}

// FeedbackHandler serves POST /api/feedback.
type FeedbackHandler struct {
	store        FeedbackSaver
	notifier     SubmissionNotifier
	metrics      *metrics.Metrics
	log          *zap.Logger
	storeTimeout time.Duration
}

func NewFeedbackHandler(s FeedbackSaver, n SubmissionNotifier, m *metrics.Metrics, log *zap.Logger, storeTimeout time.Duration) *FeedbackHandler {
	return &FeedbackHandler{
		store:        s,
		notifier:     n,
		metrics:      m,
		log:          log.Named("feedback"),
		storeTimeout: storeTimeout,
	}
}

// SubmitFeedback validates, persists and then notifies. Notification failures
// are logged; the record is already committed so the request still succeeds.
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	var req SubmitFeedbackRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxFeedbackBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug("invalid feedback body", zap.Error(err))
		h.metrics.ObserveSubmission(metrics.OutcomeInvalidBody)
		writeJSON(w, http.StatusBadRequest, BadRequestResponse{
			Success: false,
			Error:   msgInvalidBody,
		})
		return
	}

	missing := MissingFields{
		Category: req.Category == "",
		Rating:   !req.Rating.Provided(),
		Feedback: req.Feedback == "",
		Email:    req.Email == "",
	}
	if missing.Any() {
		h.metrics.ObserveSubmission(metrics.OutcomeMissingFields)
		writeJSON(w, http.StatusBadRequest, MissingFieldsResponse{
			Success:       false,
			Error:         msgMissingFields,
			MissingFields: missing,
		})
		return
	}

	rating, err := req.Rating.Parse()
	if err != nil {
		h.fail(w, log, err)
		return
	}

	ctx := r.Context()
	if h.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.storeTimeout)
		defer cancel()
	}

	rec, err := h.store.Insert(ctx, models.Feedback{
		Category:    req.Category,
		Rating:      rating,
		Feedback:    req.Feedback,
		Improvement: req.Improvement,
		Email:       req.Email,
	})
	if err != nil {
		h.fail(w, log, err)
		return
	}
	log = log.With(zap.String("feedback_id", rec.ID))
	log.Info("feedback saved", zap.String("category", rec.Category), zap.Int("rating", rec.Rating))

	// The record is committed; a client hang-up must not abort the emails
	message := h.sendNotifications(context.WithoutCancel(r.Context()), log, rec)

	h.metrics.ObserveSubmission(metrics.OutcomeCreated)
	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Success: true,
		Message: message,
	})
}

func (h *FeedbackHandler) sendNotifications(ctx context.Context, log *zap.Logger, rec models.Feedback) string {
	var sent, failed int
	for _, d := range h.notifier.NotifySubmission(ctx, rec) {
		switch {
		case d.Err == nil:
			sent++
			h.metrics.ObserveNotification(d.Kind, metrics.ResultSent)
		case errors.Is(d.Err, notify.ErrDisabled):
			h.metrics.ObserveNotification(d.Kind, metrics.ResultDisabled)
		default:
			failed++
			h.metrics.ObserveNotification(d.Kind, metrics.ResultFailed)
			log.Error("failed to send notification email", zap.String("kind", d.Kind), zap.Error(d.Err))
		}
	}

	switch {
	case failed > 0:
		return msgSavedNoEmail
	case sent > 0:
		return msgSavedAndEmailed
	default:
		log.Info("notification emails disabled")
		return msgSaved
	}
}

func (h *FeedbackHandler) fail(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		h.metrics.ObserveSubmission(metrics.OutcomeValidation)
		log.Warn("feedback rejected", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Success:          false,
			Error:            verr.Error(),
			ValidationErrors: verr.Fields,
		})
		return
	}

	h.metrics.ObserveSubmission(metrics.OutcomeStoreError)
	log.Error("failed to save feedback", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   msgStoreFailure,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
