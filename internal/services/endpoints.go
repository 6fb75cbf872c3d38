package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// ExchangeHandoff trades a one-time login handoff id for a credential with GET /session?s=<id>.
func (s *APIService) ExchangeHandoff(ctx context.Context, handoff string) (models.Credential, error) {
	resp, err := s.Execute(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/session",
		Query:  url.Values{"s": {handoff}},
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", resp.Err("Session expired")
	}

	var out tokenResponse
	if err := resp.Decode(&out); err != nil || out.Token == "" {
		return "", &shared.RequestError{Status: resp.StatusCode, Reason: "Session response carried no token"}
	}
	return models.Credential(out.Token), nil
}

// Refresh exchanges cred for a new credential with POST /refresh. It never retries and never touches the store.
func (s *APIService) Refresh(ctx context.Context, cred models.Credential) (models.Credential, error) {
	resp, err := s.send(ctx, &Request{Method: http.MethodPost, Path: "/refresh", Auth: AuthBody}, cred)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", resp.Err("Refresh failed")
	}

	var out tokenResponse
	if err := resp.Decode(&out); err != nil || out.Token == "" {
		return "", &shared.RequestError{Status: resp.StatusCode, Reason: "Refresh response carried no token"}
	}
	return models.Credential(out.Token), nil
}

// Profile fetches the logged in user's identity with GET /me.
func (s *APIService) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := s.Execute(ctx, &Request{Method: http.MethodGet, Path: "/me", Auth: AuthQuery})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Failed to fetch profile")
	}

	var profile models.Profile
	if err := resp.Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateRoom creates a room owned by the current session with POST /room/create.
//
// The service hands back the caller's existing live room instead of a new one when there is one.
func (s *APIService) CreateRoom(ctx context.Context) (*models.Room, error) {
	resp, err := s.Execute(ctx, &Request{Method: http.MethodPost, Path: "/room/create", Auth: AuthBody})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Failed to create room")
	}

	var room models.Room
	if err := resp.Decode(&room); err != nil {
		return nil, err
	}
	room.Code = models.NormalizeRoomCode(room.Code.String())
	return &room, nil
}

// CheckRoom probes code with GET /room/check. It is unauthenticated.
func (s *APIService) CheckRoom(ctx context.Context, code models.RoomCode) (*models.RoomCheck, error) {
	resp, err := s.Execute(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/room/check",
		Query:  url.Values{"code": {code.String()}},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Room not found")
	}

	var check models.RoomCheck
	if err := resp.Decode(&check); err != nil {
		return nil, err
	}
	return &check, nil
}

// JoinRoom pairs with the owner of code with POST /room/join and returns the comparison.
func (s *APIService) JoinRoom(ctx context.Context, code models.RoomCode) (*models.Comparison, error) {
	resp, err := s.Execute(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/room/join",
		Body:   map[string]any{"room_code": code.String()},
		Auth:   AuthBody,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err("Failed to join room")
	}

	var comparison models.Comparison
	if err := resp.Decode(&comparison); err != nil {
		return nil, err
	}
	return &comparison, nil
}

// Health reports the service status from GET /health.
func (s *APIService) Health(ctx context.Context) (string, error) {
	resp, err := s.Get(ctx, "/health")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := resp.Decode(&out); err != nil || out.Status == "" {
		return "unknown", nil
	}
	return out.Status, nil
}

// LoginURL is where the browser starts the third-party login.
func (s *APIService) LoginURL() string {
	return s.baseURL + "/login"
}
