// API service for making requests to the VibeSync API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/credentials"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/navigation"
	"github.com/desertthunder/vibesync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "http://127.0.0.1:8000"

// Auth says where a request carries the credential.
type Auth int

const (
	AuthNone  Auth = iota // unauthenticated; a 401 is returned as-is
	AuthQuery             // ?token=<credential>
	AuthBody              // {"token": <credential>}
)

// Request describes one API call. The credential is attached by [APIService.Execute].
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Auth   Auth
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Detail returns the "detail" string of a JSON error body, if any.
func (r *APIResponse) Detail() string {
	data, ok := r.JSONData.(map[string]any)
	if !ok {
		return ""
	}
	detail, _ := data["detail"].(string)
	return detail
}

// Err converts a non-success response into a [shared.RequestError].
func (r *APIResponse) Err(fallback string) error {
	reason := r.Detail()
	if reason == "" {
		reason = fallback
	}
	return &shared.RequestError{Status: r.StatusCode, Reason: reason}
}

// APIService is the resilient request client for the VibeSync API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore
	nav        navigation.Navigator
	limiter    *rate.Limiter
	logger     *log.Logger
}

// APIOpts contains configuration options for creating an [APIService].
type APIOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      CredentialStore
	Navigator  navigation.Navigator
	RateLimit  float64 // requests per second, 0 disables pacing
	Logger     *log.Logger
}

// NewAPIService creates a new API service instance.
func NewAPIService(opts APIOpts) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Store == nil {
		opts.Store = credentials.NewStore(nil, opts.Logger)
	}
	if opts.Navigator == nil {
		opts.Navigator = navigation.NewMemory(nil, nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &APIService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		store:      opts.Store,
		nav:        opts.Navigator,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// BaseURL returns the API root without a trailing slash.
func (s *APIService) BaseURL() string { return s.baseURL }

// Execute issues req with the stored credential, refreshing it once on a 401.
func (s *APIService) Execute(ctx context.Context, req *Request) (*APIResponse, error) {
	cred, _ := s.store.Load()

	resp, err := s.send(ctx, req, cred)
	if err != nil || req.Auth == AuthNone || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if !cred.Present() {
		s.logger.Warn("unauthorized without a credential", "path", req.Path)
		s.nav.Home()
		return nil, fmt.Errorf("%w: %s %s", shared.ErrUnauthenticated, req.Method, req.Path)
	}

	s.logger.Debug("credential rejected, refreshing", "path", req.Path)

	fresh, err := s.Refresh(ctx, cred)
	if errors.Is(err, shared.ErrRequestFailed) {
		s.logger.Warn("refresh refused, logging out", "reason", shared.Reason(err))
		s.store.Clear()
		s.nav.Home()
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionExpired, shared.Reason(err))
	} else if err != nil {
		return nil, err
	}

	s.store.Save(fresh)
	s.logger.Info("credential refreshed", "token", fresh.Redacted())

	return s.send(ctx, req, fresh)
}

func (s *APIService) send(ctx context.Context, req *Request, cred models.Credential) (*APIResponse, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
	}

	query := url.Values{}
	maps.Copy(query, req.Query)
	if req.Auth == AuthQuery && cred.Present() {
		query.Set("token", cred.String())
	}

	fullURL := s.baseURL + req.Path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if req.Body != nil || req.Auth == AuthBody {
		payload := map[string]any{}
		maps.Copy(payload, req.Body)
		if req.Auth == AuthBody {
			payload["token"] = cred.String()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Auth != AuthNone && cred.Present() {
		(&oauth2.Token{AccessToken: cred.String(), TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s", shared.ErrTimeout, req.Method, req.Path)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	s.logger.Debug("api request", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	return apiResp, nil
}

// Get performs an unauthenticated GET to path and returns the raw response.
func (s *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return s.Execute(ctx, &Request{Method: http.MethodGet, Path: path})
}
