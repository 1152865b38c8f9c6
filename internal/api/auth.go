package api

import (
	"errors"
	"net/http"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func userPayload(u *core.User) map[string]any {
	return map[string]any{
		"id":                  u.ID,
		"email":               u.Email,
		"role":                u.Role,
		"onboardingCompleted": u.OnboardingCompleted,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := s.auth.CreateUser(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrEmailRegistered) {
			s.respondError(w, http.StatusConflict, "email already registered")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}
	s.auth.TouchLogin(u.ID)
	token := s.auth.IssueToken(u.ID)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account created successfully",
		"token":   token,
		"user":    userPayload(u),
	})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := s.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.auth.TouchLogin(u.ID)
	token := s.auth.IssueToken(u.ID)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Signed in successfully",
		"token":   token,
		"user":    userPayload(u),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.auth.RevokeToken(token)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

type onboardingRequest struct {
	UserID string `json:"userId"`
	core.Onboarding
}

// handleOnboarding stores the questionnaire and seeds the shared business
// profile from it.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "userId required")
		return
	}

	ob := req.Onboarding
	if err := s.auth.SetOnboarding(req.UserID, &ob); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "onboarding save failed")
		return
	}

	profile := s.profile.Get()
	if ob.BusinessName != "" {
		profile.Name = ob.BusinessName
	}
	if ob.BusinessAbout != "" {
		profile.About = ob.BusinessAbout
	}
	if ob.Tone != "" {
		profile.Tone = ob.Tone
	} else if profile.Tone == "" {
		profile.Tone = core.DefaultTone
	}
	if err := s.profile.Set(profile); err != nil {
		s.respondError(w, http.StatusInternalServerError, "profile save failed")
		return
	}
	s.builder.Refresh()

	s.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
