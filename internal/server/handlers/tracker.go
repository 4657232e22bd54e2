// internal/server/handlers/tracker.go

package handlers

import (
	"net/http"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
	"isstrack/internal/service/facts"
)

// RevealReporter exposes the typing gate progress of the displayed fact
type RevealReporter interface {
	RevealStatus() facts.RevealStatus
}

// TrackerHandler serves the read-only tracking and fact state
type TrackerHandler struct {
	tracker tracking.Reader
	facts   fact.Provider
}

// NewTrackerHandler creates a new tracker handler
func NewTrackerHandler(tracker tracking.Reader, facts fact.Provider) *TrackerHandler {
	return &TrackerHandler{
		tracker: tracker,
		facts:   facts,
	}
}

type trailResponse struct {
	Positions  []tracking.Coordinate `json:"positions"`
	PathPoints []tracking.PathPoint  `json:"pathPoints"`
}

type factResponse struct {
	Fact         *fact.DisplayedFact `json:"fact"`
	IsGenerating bool                `json:"isGenerating"`
	Reveal       *facts.RevealStatus `json:"reveal,omitempty"`
}

type stateResponse struct {
	Position     *tracking.Coordinate  `json:"position"`
	Fact         *fact.DisplayedFact   `json:"fact"`
	IsGenerating bool                  `json:"isGenerating"`
	Trail        []tracking.Coordinate `json:"trail"`
	PathPoints   []tracking.PathPoint  `json:"pathPoints"`
}

// GetPosition returns the latest position
func (h *TrackerHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	pos, ok := h.tracker.Current()
	if !ok {
		respondWithError(w, http.StatusNotFound, "ISS position not available yet")
		return
	}

	respondWithJSON(w, http.StatusOK, pos)
}

// GetTrail returns the bounded position history
func (h *TrackerHandler) GetTrail(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, trailResponse{
		Positions:  h.tracker.Trail(),
		PathPoints: h.tracker.PathPoints(),
	})
}

// GetFact returns the displayed fact, null before the first refresh
func (h *TrackerHandler) GetFact(w http.ResponseWriter, r *http.Request) {
	resp := factResponse{
		Fact:         h.facts.Current(),
		IsGenerating: h.facts.IsGenerating(),
	}
	if rr, ok := h.facts.(RevealReporter); ok && resp.Fact != nil {
		status := rr.RevealStatus()
		resp.Reveal = &status
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// MarkRevealed records that the client finished typing out the current fact
func (h *TrackerHandler) MarkRevealed(w http.ResponseWriter, r *http.Request) {
	if h.facts.Current() == nil {
		respondWithError(w, http.StatusConflict, "No fact is displayed")
		return
	}

	h.facts.MarkRevealed()
	w.WriteHeader(http.StatusNoContent)
}

// GetState returns a full snapshot for the presentation layer
func (h *TrackerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.snapshot())
}

func (h *TrackerHandler) snapshot() stateResponse {
	resp := stateResponse{
		Fact:         h.facts.Current(),
		IsGenerating: h.facts.IsGenerating(),
		Trail:        h.tracker.Trail(),
		PathPoints:   h.tracker.PathPoints(),
	}
	if pos, ok := h.tracker.Current(); ok {
		resp.Position = &pos
	}
	return resp
}
