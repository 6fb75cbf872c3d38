package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/rooms"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	joinErr error
	joined  []models.RoomCode
}

func (f *fakeRooms) CreateRoom(ctx context.Context) (*models.Room, error) {
	return &models.Room{Code: "ABC123", ExpiresInMinutes: 10}, nil
}

func (f *fakeRooms) CheckRoom(ctx context.Context, code models.RoomCode) (*models.RoomCheck, error) {
	return &models.RoomCheck{Valid: true, Host: "Sam"}, nil
}

func (f *fakeRooms) JoinRoom(ctx context.Context, code models.RoomCode) (*models.Comparison, error) {
	f.joined = append(f.joined, code)
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &models.Comparison{
		UserA: models.Participant{DisplayName: "Alex"},
		UserB: models.Participant{DisplayName: "Sam"},
		OnlyA: []models.Track{
			{ID: "1", Name: "Teardrop", Artists: []string{"Massive Attack"}, Album: "Mezzanine"},
			{ID: "2", Name: "Windowlicker", Artists: []string{"Aphex Twin"}},
		},
		OnlyB:  []models.Track{{ID: "3", Name: "Hyperballad", Artists: []string{"Björk"}}},
		Common: []models.Track{{ID: "4", Name: "Roads", Artists: []string{"Portishead"}}},
		Stats:  models.Stats{OnlyACount: 2, OnlyBCount: 1, CommonCount: 1, CompatibilityScore: 85},
	}, nil
}

func newTestModel(t *testing.T, api *fakeRooms, opts Options) *Model {
	t.Helper()
	opts.Machine = rooms.NewMachine(api, rooms.MachineOpts{})
	m := NewModel(context.Background(), opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLanding(t *testing.T) {
	t.Run("without a login flow", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{})
		require.Equal(t, LandingView, m.viewState())
		require.Contains(t, m.View(), "vibesync auth login")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.Nil(t, cmd)
	})

	t.Run("logs in and requests a room code", func(t *testing.T) {
		logins := 0
		m := newTestModel(t, &fakeRooms{}, Options{
			Login: func(context.Context) error { logins++; return nil },
		})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.busy)
		run(t, m, cmd)

		require.Equal(t, 1, logins)
		require.True(t, m.loggedIn)
		require.Equal(t, RoomView, m.viewState())

		run(t, m, m.requestCode())
		require.Contains(t, m.View(), "ABC123")
	})

	t.Run("login failure stays on landing", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{
			Login: func(context.Context) error { return shared.ErrTimeout },
		})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)

		require.False(t, m.loggedIn)
		require.False(t, m.busy)
		require.Contains(t, m.View(), shared.ErrTimeout.Error())
	})
}

func TestRoomView(t *testing.T) {
	t.Run("placeholder until the code arrives", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{LoggedIn: true})
		require.Contains(t, m.View(), codePlaceholder)

		run(t, m, m.requestCode())
		require.Contains(t, m.View(), "ABC123")
		require.Contains(t, m.View(), "expires in 10 minutes")
	})

	t.Run("typing normalizes input", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{LoggedIn: true})

		m.Update(keys("xk4-j2"))
		require.Equal(t, models.RoomCode("XK4J2"), m.state.Input)
		require.Equal(t, models.Joining, m.state.Phase)

		m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		require.Equal(t, models.RoomCode("XK4J"), m.state.Input)
	})

	t.Run("incomplete code shows the validation reason", func(t *testing.T) {
		api := &fakeRooms{}
		m := newTestModel(t, api, Options{LoggedIn: true})

		m.Update(keys("AB"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)

		require.Empty(t, api.joined)
		require.Contains(t, m.View(), rooms.InvalidCodeReason)
	})

	t.Run("failed comparison returns to the room", func(t *testing.T) {
		api := &fakeRooms{joinErr: &shared.RequestError{Status: 404, Reason: "Room not found"}}
		m := newTestModel(t, api, Options{LoggedIn: true})

		m.Update(keys("ZZZ999"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)

		require.Equal(t, RoomView, m.viewState())
		require.Equal(t, models.RoomCode("ZZZ999"), m.state.Input)
		require.Contains(t, m.View(), "Room not found")
	})

	t.Run("copies own code", func(t *testing.T) {
		var copied []string
		m := newTestModel(t, &fakeRooms{}, Options{
			LoggedIn: true,
			Copy:     func(s string) error { copied = append(copied, s); return nil },
		})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
		require.Nil(t, cmd)

		run(t, m, m.requestCode())
		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
		run(t, m, cmd)

		require.Equal(t, []string{"ABC123"}, copied)
		require.Contains(t, m.View(), "Copied")
	})

	t.Run("checks the entered code", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{LoggedIn: true})

		m.Update(keys("ZZZ999"))
		_, cmd := m.Update(keys("?"))
		run(t, m, cmd)

		require.Equal(t, models.RoomCode("ZZZ999"), m.state.Input)
		require.Contains(t, m.View(), "Sam is waiting")
	})
}

func TestResultView(t *testing.T) {
	compare := func(t *testing.T) *Model {
		m := newTestModel(t, &fakeRooms{}, Options{LoggedIn: true})
		m.Update(keys("ZZZ999"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)
		require.Equal(t, ResultView, m.viewState())
		return m
	}

	t.Run("renders the vibe and lists", func(t *testing.T) {
		m := compare(t)
		view := m.View()
		require.Contains(t, view, "Musical Soulmates")
		require.Contains(t, view, "85% compatible")
		require.Contains(t, view, "Only you (2)")
		require.Contains(t, view, "Only Sam (1)")
		require.Contains(t, view, "In common (1)")
		require.Len(t, m.tracks.Items(), 2)
	})

	t.Run("switches lists", func(t *testing.T) {
		m := compare(t)

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		require.Equal(t, models.OnlyB, m.tab)
		require.Equal(t, "Hyperballad", m.tracks.Items()[0].(trackItem).track.Name)

		m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		require.Equal(t, models.Common, m.tab)
	})

	t.Run("searches the active list", func(t *testing.T) {
		m := compare(t)

		m.Update(keys("/"))
		require.True(t, m.search.Focused())
		m.Update(keys("aphex"))
		require.Len(t, m.tracks.Items(), 1)
		require.Equal(t, "Windowlicker", m.tracks.Items()[0].(trackItem).track.Name)

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.False(t, m.search.Focused())
		require.Len(t, m.tracks.Items(), 2)
	})

	t.Run("compares again", func(t *testing.T) {
		m := compare(t)

		_, cmd := m.Update(keys("r"))
		run(t, m, cmd)

		require.Equal(t, RoomView, m.viewState())
		require.Empty(t, m.state.Input)
		require.Equal(t, models.RoomCode("ABC123"), m.state.OwnCode)
	})
}

func TestSessionEnd(t *testing.T) {
	t.Run("forced logout returns to landing", func(t *testing.T) {
		homes := make(chan struct{}, 1)
		m := newTestModel(t, &fakeRooms{}, Options{LoggedIn: true, Homes: homes})

		homes <- struct{}{}
		run(t, m, m.waitForHome())

		require.Equal(t, LandingView, m.viewState())
		require.True(t, strings.Contains(m.View(), "session expired"))
	})

	t.Run("profile failure logs out", func(t *testing.T) {
		logouts := 0
		m := newTestModel(t, &fakeRooms{}, Options{
			LoggedIn: true,
			Profile: func(context.Context) (*models.Profile, error) {
				return nil, errors.New("Failed to fetch profile")
			},
			Logout: func() { logouts++ },
		})

		run(t, m, m.fetchProfile())

		require.Equal(t, 1, logouts)
		require.Equal(t, LandingView, m.viewState())
	})

	t.Run("logging out from results starts the next session idle", func(t *testing.T) {
		logouts := 0
		m := newTestModel(t, &fakeRooms{}, Options{
			LoggedIn: true,
			Login:    func(context.Context) error { return nil },
			Logout:   func() { logouts++ },
		})
		m.Update(keys("ZZZ999"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)
		require.Equal(t, ResultView, m.viewState())

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
		run(t, m, cmd)
		require.Equal(t, 1, logouts)
		require.Equal(t, LandingView, m.viewState())

		state := m.machine.State()
		require.Equal(t, models.Idle, state.Phase)
		require.Nil(t, state.Result)
		require.Empty(t, state.Input)
		require.Empty(t, state.OwnCode)

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)
		run(t, m, m.requestCode())

		require.Equal(t, RoomView, m.viewState())
		require.Nil(t, m.state.Result)
		require.Equal(t, models.RoomCode("ABC123"), m.state.OwnCode)
	})

	t.Run("shows the profile name", func(t *testing.T) {
		m := newTestModel(t, &fakeRooms{}, Options{
			LoggedIn: true,
			Profile: func(context.Context) (*models.Profile, error) {
				return &models.Profile{UserID: "u1", DisplayName: "Alex"}, nil
			},
		})

		run(t, m, m.fetchProfile())
		require.Contains(t, m.View(), "VibeSync • Alex")
	})
}
