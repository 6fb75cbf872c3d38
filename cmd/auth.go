package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/server"
	"github.com/desertthunder/vibesync/internal/session"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// AuthLogin runs the browser login, then loads the profile and a fresh room code side by side.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	event, err := r.login(ctx, !cmd.Bool("no-browser"), r.output)
	if err != nil {
		return err
	}

	var profile *models.Profile
	var code models.RoomCode

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := r.api.Profile(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		c, err := r.machine.RequestCode(gctx)
		if err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		code = c
		return nil
	})

	if err := g.Wait(); err != nil {
		if profile == nil {
			r.logger.Warn("profile unavailable after login, logging out", "error", err)
			r.store.Clear()
		}
		return err
	}

	r.writePlain("✓ Logged in as %s\n", profile.DisplayName)
	r.writePlain("Token: %s (%s mode)\n", event.Credential.Redacted(), event.Mode)
	if r.store.Degraded() {
		r.writePlain("⚠ Credential storage is unavailable; the session lasts until this process exits.\n")
	}
	r.writePlainln("Your room code: %s", code)
	r.writePlain("Share it with a friend: vibesync room join %s\n", code)
	return nil
}

// login waits for the browser to return to the loopback callback receiver and completes the session from the
// location it arrived on. Progress is written to out.
func (r *Runner) login(ctx context.Context, openBrowser bool, out io.Writer) (*session.AuthEvent, error) {
	settings := r.config.Session
	handler := server.NewCallbackHandler(r.nav.Location(), settings.Mode == shared.SessionModeFragment)
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(r.logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    settings.CallbackAddr(),
		Handler: router,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the login callback on %s: %w", httpServer.Addr, err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login callback server at %v", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	loginURL := r.api.LoginURL()
	if openBrowser {
		fmt.Fprintf(out, "→ Opening browser to log in...\n")
		if err := shared.OpenBrowser(loginURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			fmt.Fprintf(out, "\n⚠ Could not open browser automatically.\n")
			fmt.Fprintf(out, "Please open this URL in your browser:\n%s\n\n", loginURL)
		}
	} else {
		fmt.Fprintf(out, "Open this URL in your browser:\n%s\n\n", loginURL)
	}

	wait := settings.LoginTimeout()
	fmt.Fprintf(out, "→ Waiting for login (%v timeout)...\n", wait)

	timeout := time.NewTimer(wait)
	defer timeout.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: login timed out after %v", shared.ErrTimeout, wait)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, result.Error()
	}

	r.nav.Arrive(result.Location)
	event, err := r.gateway.Complete(ctx)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: the login did not return a session", shared.ErrHandoffRejected)
	}
	return event, nil
}

// AuthLogout forgets the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if _, ok := r.store.Load(); !ok {
		return r.writePlain("Not logged in\n")
	}
	r.store.Clear()
	return r.writePlain("✓ Logged out\n")
}

type statusReport struct {
	Service       string     `json:"service"`
	Healthy       bool       `json:"healthy"`
	Status        string     `json:"status"`
	LoggedIn      bool       `json:"logged_in"`
	Token         string     `json:"token,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired"`
	StorageMemory bool       `json:"storage_memory_only"`
}

// AuthStatus checks the service with /health and describes the stored session from its unverified claims.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	report := statusReport{Service: r.api.BaseURL()}

	status, err := r.api.Health(ctx)
	if err != nil {
		r.logger.Warn("health check failed", "error", err)
		report.Status = shared.Reason(err)
	} else {
		report.Healthy, report.Status = true, status
	}

	if token, err := r.store.TokenSource().Token(); err == nil {
		cred := models.Credential(token.AccessToken)
		report.LoggedIn = true
		report.Token = cred.Redacted()
		if !token.Expiry.IsZero() {
			report.ExpiresAt = &token.Expiry
			report.Expired = !token.Valid()
		}
		if claims, err := cred.Claims(); err == nil {
			report.Subject, report.DisplayName = claims.Subject, claims.DisplayName
		}
	}
	report.StorageMemory = r.store.Degraded()

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	if report.Healthy {
		r.writePlain("✓ Service is healthy\n")
	} else {
		r.writePlain("✗ Service unavailable\n")
	}
	r.writePlain("Service: %s\n", report.Service)
	r.writePlain("Status: %s\n", report.Status)

	if !report.LoggedIn {
		return r.writePlain("Session: ✗ Not logged in\n")
	}

	who := report.DisplayName
	if who == "" {
		who = report.Subject
	}
	if who != "" {
		r.writePlain("Session: ✓ Logged in as %s\n", who)
	} else {
		r.writePlain("Session: ✓ Logged in\n")
	}
	r.writePlain("Token: %s\n", report.Token)
	if report.ExpiresAt != nil {
		note := ""
		if report.Expired {
			note = " (expired, will refresh on next request)"
		}
		r.writePlain("Expires: %s%s\n", report.ExpiresAt.Local().Format(time.RFC1123), note)
	}
	if report.StorageMemory {
		r.writePlain("⚠ Credential storage unavailable, session kept in memory\n")
	}
	return nil
}

// AuthWhoami prints the profile of the logged in user.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLogin(); err != nil {
		return err
	}

	profile, err := r.api.Profile(ctx)
	if err != nil {
		return r.sessionError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}
	r.writePlain("%s\n", profile.DisplayName)
	return r.writePlain("ID: %s\n", profile.UserID)
}

// requireLogin fails fast when no credential is stored.
func (r *Runner) requireLogin() error {
	if _, err := r.store.TokenSource().Token(); err != nil {
		return fmt.Errorf("%w: run `vibesync auth login` first", err)
	}
	return nil
}

// sessionError adds a hint when a request ended the session.
func (r *Runner) sessionError(err error) error {
	if errors.Is(err, shared.ErrSessionExpired) || errors.Is(err, shared.ErrUnauthenticated) {
		return fmt.Errorf("%w (run `vibesync auth login`)", err)
	}
	return err
}
