// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/revbeat/internal/app"
	"github.com/okian/revbeat/pkg/logger"
)

// recommendQuery mirrors the query string of GET /api/recommend.
type recommendQuery struct {
	City      string `query:"city" validate:"required"`
	Mood      string `query:"mood" validate:"required"`
	Duration  string `query:"duration" validate:"required,number"`
	LocalTime string `query:"localTime" validate:"required,datetime=15:04"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("query")
		})
	})
	return validate
}

func parseRecommendQuery(r *http.Request) (recommendQuery, error) {
	q := r.URL.Query()
	rq := recommendQuery{
		City:      strings.TrimSpace(q.Get("city")),
		Mood:      strings.TrimSpace(q.Get("mood")),
		Duration:  strings.TrimSpace(q.Get("duration")),
		LocalTime: strings.TrimSpace(q.Get("localTime")),
	}
	return rq, rq.validate()
}

func (rq recommendQuery) validate() error {
	err := getValidator().Struct(rq)
	if err == nil {
		if n, convErr := strconv.Atoi(rq.Duration); convErr != nil || n <= 0 {
			return fmt.Errorf("%w: duration must be a positive whole number of minutes", ErrInvalidParameter)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return ErrMissingParameters
		case "number":
			msgs = append(msgs, "duration must be a positive whole number of minutes")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be HH:MM")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(msgs, "; "))
}

func (rq recommendQuery) request() service.Request {
	minutes, _ := strconv.Atoi(rq.Duration)
	return service.Request{
		City:            rq.City,
		Mood:            rq.Mood,
		LocalTime:       rq.LocalTime,
		DurationMinutes: minutes,
	}
}

// RecommendHandler handles playlist requests.
type RecommendHandler struct {
	rec Recommender
	log logger.Logger
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(rec Recommender) *RecommendHandler {
	return &RecommendHandler{rec: rec, log: logger.Named("api")}
}

// HandleRecommend handles GET /api/recommend?city=&mood=&duration=&localTime= requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	rq, err := parseRecommendQuery(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	rec, err := h.rec.Recommend(r.Context(), rq.request())
	if err != nil {
		h.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMissingParameters) {
		writeError(w, http.StatusBadRequest, msgMissingParameters)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeServiceError maps service failures to a status and a message that
// never leaks collaborator details.
func (h *RecommendHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := service.GenericFailureMessage
	var se *service.StageError
	if errors.As(err, &se) {
		msg = se.Public()
	}
	h.log.Error(ctx, "recommend request failed", logger.String("public", msg), logger.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}
