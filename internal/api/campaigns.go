package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

type campaignSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	OwnerUserID string     `json:"ownerUserId"`
	Specs       []string   `json:"specs"`
	Brief       core.Brief `json:"brief"`
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	ownerUserID := r.URL.Query().Get("ownerUserId")
	campaigns := s.campaigns.List(ownerUserID)

	out := make([]campaignSummary, 0, len(campaigns))
	for _, c := range campaigns {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		specs := c.Specs
		if specs == nil {
			specs = []string{}
		}
		out = append(out, campaignSummary{
			ID:          c.ID,
			Name:        name,
			OwnerUserID: c.OwnerUserID,
			Specs:       specs,
			Brief:       core.Brief{Description: c.Brief.Description},
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertCampaign(w http.ResponseWriter, r *http.Request) {
	var req core.Campaign
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Merge over any existing record so partial payloads don't wipe fields
	if req.ID != "" {
		patched, err := s.campaigns.Patch(req.ID, &req)
		if err == nil {
			s.builder.Refresh()
			s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": patched})
			return
		}
		if !errors.Is(err, core.ErrCampaignNotFound) {
			s.respondError(w, http.StatusInternalServerError, "campaign save failed")
			return
		}
	}
	if req.Name == "" {
		req.Name = req.ID
	}

	saved, err := s.campaigns.Upsert(&req)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "campaign save failed")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": saved})
}

func (s *Server) handlePatchCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req core.Campaign
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.campaigns.Patch(id, &req)
	if err != nil {
		if errors.Is(err, core.ErrCampaignNotFound) {
			s.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "campaign save failed")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": c})
}

type specsRequest struct {
	Specs []string `json:"specs"`
}

func (s *Server) handleSetCampaignSpecs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req specsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.campaigns.SetSpecs(id, core.DedupSpecs(req.Specs))
	if err != nil {
		if errors.Is(err, core.ErrCampaignNotFound) {
			s.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "specs save failed")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": c})
}

func (s *Server) handleStartCampaign(w http.ResponseWriter, r *http.Request) {
	s.toggleCampaign(w, r, s.campaigns.Start)
}

func (s *Server) handleStopCampaign(w http.ResponseWriter, r *http.Request) {
	s.toggleCampaign(w, r, s.campaigns.Stop)
}

func (s *Server) toggleCampaign(w http.ResponseWriter, r *http.Request, op func(string) (*core.Campaign, error)) {
	id := chi.URLParam(r, "id")
	c, err := op(id)
	if err != nil {
		if errors.Is(err, core.ErrCampaignNotFound) {
			s.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "campaign update failed")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "campaign": c})
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existed, err := s.campaigns.Delete(id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "campaign delete failed")
		return
	}
	if !existed {
		s.respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// --- Mother AI flow configs ---

func (s *Server) handleListMotherAI(w http.ResponseWriter, _ *http.Request) {
	var activeID string
	if active := s.motherAI.Active(); active != nil {
		activeID = active.ID
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"items":            s.motherAI.List(),
		"activeMotherAIId": activeID,
	})
}

func (s *Server) handleSaveMotherAI(w http.ResponseWriter, r *http.Request) {
	var req core.MotherAI
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := s.motherAI.Save(&req)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "mother ai save failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "item": saved})
}

func (s *Server) handleActivateMotherAI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.motherAI.Activate(id); err != nil {
		if errors.Is(err, core.ErrMotherAINotFound) {
			s.respondError(w, http.StatusNotFound, "mother ai config not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "activation failed")
		return
	}
	s.builder.Refresh()
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "activeMotherAIId": id})
}
