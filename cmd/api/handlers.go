package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/seoul-connect-api/internal/domain/reviewer"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// reviewRequest is the wire shape of a review invocation.
type reviewRequest struct {
	Itinerary *types.Itinerary `json:"itinerary"`
	Feedback  string           `json:"feedback"`
	Iteration int              `json:"iteration"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Details  []string `json:"details,omitempty"`
	Attempts int      `json:"attempts,omitempty"`
}

// handleGeneratePlan runs the planning pipeline and returns the itinerary as
// JSON. Retry exhaustion and intent parse failures map to 422 with the
// accumulated error messages.
func (d *Dependencies) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req types.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "description is required"})
		return
	}

	itinerary, err := d.PlannerService.Plan(r.Context(), req)
	if err != nil {
		var failure *types.PlanningFailure
		if errors.As(err, &failure) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:    "planning failed",
				Details:  failure.Errors,
				Attempts: failure.Attempts,
			})
			return
		}
		d.Logger.ErrorContext(r.Context(), "plan generation failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, itinerary)
}

// handleGeneratePlanStream runs the planning pipeline while streaming one SSE
// event per completed node, ending with a single complete or error event.
func (d *Dependencies) handleGeneratePlanStream(w http.ResponseWriter, r *http.Request) {
	var req types.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "description is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	eventCh := make(chan types.StreamEvent, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for event := range eventCh {
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}()

	// PlanStream owns the sends; the channel closes once it returns so the
	// writer goroutine drains everything before the handler exits.
	if err := d.PlannerService.PlanStream(ctx, req, eventCh); err != nil {
		d.Logger.WarnContext(ctx, "plan stream ended with failure", slog.Any("error", err))
	}
	close(eventCh)
	<-done
}

// handleReview runs the review pipeline once for one feedback message.
func (d *Dependencies) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Itinerary == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "itinerary is required"})
		return
	}
	if req.Iteration >= reviewer.MaxIterations {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "modification rounds exhausted, submit a new planning request",
		})
		return
	}

	outcome, err := d.ReviewerService.Review(r.Context(), req.Itinerary, req.Feedback, req.Iteration)
	if err != nil {
		if errors.Is(err, types.ErrNoPlan) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "itinerary is required"})
			return
		}
		d.Logger.ErrorContext(r.Context(), "review failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
