package api

import (
	"net/http"
	"os"
)

// handleIntegrationsStatus summarizes platform connectivity for the dashboard
func (s *Server) handleIntegrationsStatus(w http.ResponseWriter, _ *http.Request) {
	fbToken := s.cfg.Facebook.PageToken
	fbPageID := s.cfg.Facebook.PageID
	if fbToken == "" {
		if fb := s.integrations.Facebook(); fb != nil {
			fbToken = fb.PageToken
			if fbPageID == "" {
				fbPageID = fb.PageID
			}
		}
	}

	var fbPageIDPayload any
	if fbPageID != "" {
		fbPageIDPayload = fbPageID
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"facebook": map[string]any{
			"connected": fbToken != "" && fbPageID != "",
			"pageId":    fbPageIDPayload,
		},
		"whatsapp": map[string]any{
			"connected": s.whatsappSender("").IsConfigured(),
			"mode":      s.cfg.WhatsApp.Mode,
		},
		"instagram": map[string]any{
			"connected": s.cfg.Instagram.AppID != "",
		},
	})
}

// handleFacebookAppInfo feeds the integration banner
func (s *Server) handleFacebookAppInfo(w http.ResponseWriter, _ *http.Request) {
	var appID, callback any
	if s.cfg.Facebook.AppID != "" {
		appID = s.cfg.Facebook.AppID
	}
	if s.cfg.Facebook.CallbackURL != "" {
		callback = s.cfg.Facebook.CallbackURL
	}
	appName := os.Getenv("FACEBOOK_APP_NAME")
	if appName == "" {
		appName = "Facebook App"
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"appId":    appID,
		"appName":  appName,
		"callback": callback,
	})
}
