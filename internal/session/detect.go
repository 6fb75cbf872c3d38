package session

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/vibesync/internal/shared"
)

// Detector recognizes a location returning from the external login.
type Detector interface {
	// Mode names the strategy ("handoff" or "fragment").
	Mode() string
	// Detect extracts the login marker from u.
	Detect(u *url.URL) (marker string, ok bool)
	// Strip returns u without the marker.
	Strip(u *url.URL) *url.URL
}

// NewDetector returns the detector for mode.
func NewDetector(mode string) (Detector, error) {
	switch mode {
	case shared.SessionModeHandoff, "":
		return HandoffDetector{}, nil
	case shared.SessionModeFragment:
		return FragmentDetector{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown session mode %q", shared.ErrInvalidConfig, mode)
	}
}

// HandoffDetector reads a short-lived handoff id from the "s" query parameter.
// The id has to be exchanged with the service for a credential.
type HandoffDetector struct{}

func (HandoffDetector) Mode() string { return shared.SessionModeHandoff }

func (HandoffDetector) Detect(u *url.URL) (string, bool) {
	if u == nil {
		return "", false
	}
	values, ok := u.Query()["s"]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (HandoffDetector) Strip(u *url.URL) *url.URL {
	c := *u
	q := c.Query()
	q.Del("s")
	c.RawQuery = q.Encode()
	return &c
}

// FragmentDetector reads the credential itself from a "#token=<jwt>" fragment.
type FragmentDetector struct{}

func (FragmentDetector) Mode() string { return shared.SessionModeFragment }

func (FragmentDetector) Detect(u *url.URL) (string, bool) {
	if u == nil || u.Fragment == "" {
		return "", false
	}
	for part := range strings.SplitSeq(u.Fragment, "&") {
		if value, found := strings.CutPrefix(part, "token="); found {
			if unescaped, err := url.QueryUnescape(value); err == nil {
				value = unescaped
			}
			return value, true
		}
	}
	return "", false
}

func (FragmentDetector) Strip(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}
