package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/surya9634/Work-Flow-zen/internal/logging"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

// facebookOAuthConfig builds the page-token OAuth flow
func (s *Server) facebookOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Facebook.AppID,
		ClientSecret: s.cfg.Facebook.AppSecret,
		RedirectURL:  s.cfg.Facebook.CallbackURL,
		Endpoint:     facebook.Endpoint,
		Scopes: []string{
			"pages_messaging",
			"pages_manage_metadata",
			"pages_read_engagement",
			"pages_show_list",
		},
	}
}

func (s *Server) handleFacebookAuth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Facebook.AppID == "" || s.cfg.Facebook.AppSecret == "" {
		http.Error(w, "facebook_app_not_configured", http.StatusBadRequest)
		return
	}
	authURL := s.facebookOAuthConfig().AuthCodeURL("", oauth2.SetAuthURLParam("auth_type", "rerequest"))
	http.Redirect(w, r, authURL, http.StatusFound)
}

type fbPagesResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// handleFacebookCallback exchanges the code, picks the configured page (or
// the first one), and persists the page token so it survives restarts.
func (s *Server) handleFacebookCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing_code", http.StatusBadRequest)
		return
	}

	token, err := s.facebookOAuthConfig().Exchange(r.Context(), code)
	if err != nil {
		logging.Warn("facebook token exchange failed: %v", err)
		http.Error(w, "token_exchange_failed", http.StatusBadGateway)
		return
	}

	pages, err := s.fetchFacebookPages(r.Context(), token.AccessToken)
	if err != nil || len(pages.Data) == 0 {
		http.Error(w, "no_pages_found", http.StatusBadRequest)
		return
	}

	page := pages.Data[0]
	if desired := s.cfg.Facebook.PageID; desired != "" {
		for _, p := range pages.Data {
			if p.ID == desired {
				page = p
				break
			}
		}
	}
	if page.AccessToken == "" || page.ID == "" {
		http.Error(w, "no_page_token", http.StatusBadRequest)
		return
	}

	s.cfg.Facebook.PageToken = page.AccessToken
	s.cfg.Facebook.PageID = page.ID
	if err := s.integrations.SetFacebook(page.ID, page.AccessToken, ""); err != nil {
		logging.Warn("failed to persist facebook integration: %v", err)
	}
	logging.Info("facebook page %s connected", page.ID)

	http.Redirect(w, r, "/dashboard/integration?connected=1", http.StatusFound)
}

func (s *Server) fetchFacebookPages(ctx context.Context, userToken string) (*fbPagesResponse, error) {
	endpoint := "https://graph.facebook.com/v18.0/me/accounts?access_token=" + url.QueryEscape(userToken)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pages fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pages fetch: status %d", resp.StatusCode)
	}
	var pages fbPagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		return nil, err
	}
	return &pages, nil
}

// instagramOAuthConfig builds the Instagram business OAuth flow. Instagram
// uses its own endpoints rather than the shared Facebook ones.
func (s *Server) instagramOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Instagram.AppID,
		ClientSecret: s.cfg.Instagram.AppSecret,
		RedirectURL:  s.cfg.Instagram.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.instagram.com/oauth/authorize",
			TokenURL: "https://api.instagram.com/oauth/access_token",
		},
		Scopes: []string{
			"instagram_business_basic",
			"instagram_business_manage_messages",
			"instagram_business_manage_comments",
			"instagram_business_content_publish",
			"instagram_business_manage_insights",
		},
	}
}

func (s *Server) handleInstagramAuth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Instagram.AppID == "" {
		http.Error(w, "instagram_app_not_configured", http.StatusBadRequest)
		return
	}
	authURL := s.instagramOAuthConfig().AuthCodeURL("", oauth2.SetAuthURLParam("force_reauth", "true"))
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) handleInstagramCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		logging.Warn("instagram oauth error: %s (%s)", errCode, q.Get("error_reason"))
		http.Redirect(w, r, "/?error=instagram_auth_failed", http.StatusFound)
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, "/?error=instagram_auth_failed", http.StatusFound)
		return
	}

	token, err := s.instagramOAuthConfig().Exchange(r.Context(), code)
	if err != nil {
		logging.Warn("instagram token exchange failed: %v", err)
		http.Redirect(w, r, "/?error=instagram_auth_failed", http.StatusFound)
		return
	}

	igUserID := ""
	switch v := token.Extra("user_id").(type) {
	case string:
		igUserID = v
	case float64:
		igUserID = strconv.FormatInt(int64(v), 10)
	}

	username := s.fetchInstagramUsername(r.Context(), token.AccessToken)
	ig := store.InstagramIntegration{
		IGUserID:    igUserID,
		Username:    username,
		AccessToken: token.AccessToken,
		ConnectedAt: time.Now().UTC(),
	}
	if err := s.integrations.SetInstagram(igUserID, ig); err != nil {
		logging.Warn("failed to persist instagram integration: %v", err)
	}
	logging.Info("instagram account %s connected", username)

	http.Redirect(w, r, "/dashboard/integration?instagram_connected=1", http.StatusFound)
}

func (s *Server) fetchInstagramUsername(ctx context.Context, accessToken string) string {
	endpoint := "https://graph.instagram.com/me?fields=id,username&access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("X-IG-App-ID", s.cfg.Instagram.AppID)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var parsed struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}
	return parsed.Username
}
