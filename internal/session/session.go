// Package session turns the return from the external login into a stored credential.
//
// The [Gateway] inspects the navigator's location once per load. In handoff mode the location carries a
// short-lived id (?s=<id>) that is exchanged with the service exactly once; in fragment mode the credential
// arrives directly (#token=<jwt>). On success the credential is saved, the marker is removed from the location,
// and an [AuthEvent] goes back to the caller. On failure nothing is saved and the navigator is sent home.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/navigation"
	"github.com/desertthunder/vibesync/internal/services"
	"github.com/desertthunder/vibesync/internal/shared"
)

// Exchanger trades a handoff id for a credential.
type Exchanger interface {
	ExchangeHandoff(ctx context.Context, handoff string) (models.Credential, error)
}

// AuthEvent reports a completed login.
type AuthEvent struct {
	Credential models.Credential
	Mode       string
	At         time.Time
}

// Gateway completes logins. It is safe for concurrent use; concurrent calls for the same load share one attempt.
type Gateway struct {
	mu        sync.Mutex
	detector  Detector
	exchanger Exchanger
	store     services.CredentialStore
	nav       navigation.Navigator
	attempted map[string]bool
	logger    *log.Logger
}

// NewGateway creates a gateway. exchanger may be nil in fragment mode.
func NewGateway(detector Detector, exchanger Exchanger, store services.CredentialStore, nav navigation.Navigator, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Gateway{
		detector:  detector,
		exchanger: exchanger,
		store:     store,
		nav:       nav,
		attempted: map[string]bool{},
		logger:    logger.WithPrefix("session"),
	}
}

// Pending reports whether the current location carries an unconsumed login marker.
func (g *Gateway) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	marker, ok := g.detector.Detect(g.nav.Location())
	return ok && !g.attempted[marker]
}

// Complete consumes the login marker of the current location.
//
// It returns (nil, nil) when the location carries no marker or the marker was already attempted.
// Failures return [shared.ErrHandoffExpired] or [shared.ErrHandoffRejected] after sending the navigator home.
func (g *Gateway) Complete(ctx context.Context) (*AuthEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	location := g.nav.Location()
	marker, ok := g.detector.Detect(location)
	if !ok || g.attempted[marker] {
		return nil, nil
	}
	g.attempted[marker] = true

	logger := shared.WithLogger(g.logger, "mode", g.detector.Mode())
	logger.Info("completing login")

	cred, err := g.credential(ctx, marker)
	if err != nil {
		logger.Warn("login handoff failed", "error", err)
		g.nav.Home()
		return nil, err
	}

	g.store.Save(cred)
	g.nav.Replace(g.detector.Strip(location))
	logger.Info("logged in", "token", cred.Redacted())

	return &AuthEvent{Credential: cred, Mode: g.detector.Mode(), At: time.Now()}, nil
}

func (g *Gateway) credential(ctx context.Context, marker string) (models.Credential, error) {
	if g.detector.Mode() == shared.SessionModeFragment {
		if marker == "" {
			return "", fmt.Errorf("%w: empty token fragment", shared.ErrHandoffRejected)
		}
		return models.Credential(marker), nil
	}

	if marker == "" {
		return "", fmt.Errorf("%w: empty handoff id", shared.ErrHandoffRejected)
	}
	if g.exchanger == nil {
		return "", fmt.Errorf("%w: no exchanger configured", shared.ErrHandoffRejected)
	}

	cred, err := g.exchanger.ExchangeHandoff(ctx, marker)
	if err == nil {
		return cred, nil
	}

	var reqErr *shared.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Status {
		case http.StatusUnauthorized, http.StatusNotFound, http.StatusGone:
			return "", fmt.Errorf("%w: %s", shared.ErrHandoffExpired, reqErr.Reason)
		}
	}
	return "", fmt.Errorf("%w: %v", shared.ErrHandoffRejected, err)
}
