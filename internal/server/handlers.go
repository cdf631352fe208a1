package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tokenforge/sage/internal/model"
)

// askRequest is the POST /api/v1/ask body.
type askRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	answer := s.engine.Ask(r.Context(), req.UserID, req.Question)
	writeJSON(w, http.StatusOK, answer)
}

// feedbackRequest is the POST /api/v1/feedback body.
type feedbackRequest struct {
	UserID   string   `json:"user_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Rating   int      `json:"rating"`
	Topics   []string `json:"topics,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	event, err := s.events.Add(model.FeedbackEvent{
		UserID:   req.UserID,
		Question: req.Question,
		Answer:   req.Answer,
		Rating:   req.Rating,
		Topics:   req.Topics,
		Comment:  req.Comment,
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": event.ID})
}

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	term := r.URL.Query().Get("q")

	var entries []model.KnowledgeEntry
	if category != "" {
		entries = s.store.FindByCategory(model.KnowledgeCategory(category), term)
	} else {
		entries = s.store.GetAll()
	}
	writeJSON(w, http.StatusOK, entries)
}

// createKnowledgeRequest is the POST /api/v1/knowledge body.
type createKnowledgeRequest struct {
	Topic         string   `json:"topic"`
	Subtopic      string   `json:"subtopic,omitempty"`
	Category      string   `json:"category"`
	Information   string   `json:"information"`
	Confidence    int      `json:"confidence"`
	Relationships []string `json:"relationships,omitempty"`
}

func (s *Server) handleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req createKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, err := s.store.Create(model.KnowledgeEntry{
		Topic:         req.Topic,
		Subtopic:      req.Subtopic,
		Category:      model.KnowledgeCategory(req.Category),
		Information:   req.Information,
		Confidence:    req.Confidence,
		Relationships: req.Relationships,
		Source:        model.KnowledgeSourceManual,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tasks.Pending())
}

func (s *Server) handleLearningMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.daily.All())
}
