package credentials

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type brokenBackend struct{ calls int }

func (b *brokenBackend) Get() (string, bool, error) {
	b.calls++
	return "", false, errors.New("disk gone")
}
func (b *brokenBackend) Set(string) error { b.calls++; return errors.New("disk full") }
func (b *brokenBackend) Delete() error    { b.calls++; return errors.New("permission denied") }

type mapSlots map[string]string

func (m mapSlots) GetSlot(name string) (string, bool, error) { v, ok := m[name]; return v, ok, nil }
func (m mapSlots) SetSlot(name, value string) error          { m[name] = value; return nil }
func (m mapSlots) DeleteSlot(name string) error              { delete(m, name); return nil }

func TestStore(t *testing.T) {
	t.Run("round trip through file slot", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(NewFileBackend(dir, ""), nil)

		_, ok := store.Load()
		require.False(t, ok, "empty slot means logged out")

		store.Save("T1")
		got, ok := store.Load()
		require.True(t, ok)
		require.Equal(t, models.Credential("T1"), got)

		data, err := os.ReadFile(filepath.Join(dir, DefaultSlot))
		require.NoError(t, err)
		require.Equal(t, "T1", string(data))

		info, err := os.Stat(filepath.Join(dir, DefaultSlot))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())

		reopened := NewStore(NewFileBackend(dir, ""), nil)
		got, ok = reopened.Load()
		require.True(t, ok, "credential survives a restart")
		require.Equal(t, models.Credential("T1"), got)

		store.Clear()
		_, ok = store.Load()
		require.False(t, ok)
		_, err = os.Stat(filepath.Join(dir, DefaultSlot))
		require.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("save replaces previous credential", func(t *testing.T) {
		store := NewStore(nil, nil)
		store.Save("T1")
		store.Save("T2")

		got, ok := store.Load()
		require.True(t, ok)
		require.Equal(t, models.Credential("T2"), got)
	})

	t.Run("saving empty credential clears", func(t *testing.T) {
		store := NewStore(nil, nil)
		store.Save("T1")
		store.Save("")

		_, ok := store.Load()
		require.False(t, ok)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := NewStore(NewFileBackend(t.TempDir(), "slot"), nil)
		store.Clear()
		store.Clear()
		require.False(t, store.Degraded())
	})

	t.Run("unavailable storage degrades to memory", func(t *testing.T) {
		var buf bytes.Buffer
		backend := &brokenBackend{}
		store := NewStore(backend, shared.NewLogger(&buf))

		_, ok := store.Load()
		require.False(t, ok)
		require.True(t, store.Degraded())

		store.Save("T1")
		got, ok := store.Load()
		require.True(t, ok, "credential kept in memory for the process lifetime")
		require.Equal(t, models.Credential("T1"), got)
		require.Equal(t, 1, backend.calls, "degraded store stops touching the backend")
		require.Contains(t, buf.String(), "credential storage unavailable")

		store.Clear()
		_, ok = store.Load()
		require.False(t, ok)
	})

	t.Run("unwritable directory degrades on save", func(t *testing.T) {
		parent := t.TempDir()
		blocker := filepath.Join(parent, "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		store := NewStore(NewFileBackend(filepath.Join(blocker, "dir"), ""), nil)
		store.Save("T1")

		require.True(t, store.Degraded())
		got, ok := store.Load()
		require.True(t, ok)
		require.Equal(t, models.Credential("T1"), got)
	})

	t.Run("slot backend", func(t *testing.T) {
		slots := mapSlots{}
		store := NewStore(NewSlotBackend(slots, ""), nil)
		store.Save("T9")
		require.Equal(t, "T9", slots[DefaultSlot])

		store.Clear()
		require.NotContains(t, slots, DefaultSlot)
	})
}

func TestTokenSource(t *testing.T) {
	t.Run("no credential", func(t *testing.T) {
		_, err := NewStore(nil, nil).TokenSource().Token()
		require.ErrorIs(t, err, shared.ErrUnauthenticated)
	})

	t.Run("opaque credential", func(t *testing.T) {
		store := NewStore(nil, nil)
		store.Save("opaque")

		token, err := store.TokenSource().Token()
		require.NoError(t, err)
		require.Equal(t, "opaque", token.AccessToken)
		require.Equal(t, "Bearer", token.Type())
		require.True(t, token.Expiry.IsZero())
	})

	t.Run("expiry from claims", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": exp.Unix()}).
			SignedString([]byte("k"))
		require.NoError(t, err)

		token := Token(models.Credential(signed))
		require.True(t, token.Expiry.Equal(exp))
		require.True(t, token.Valid())
	})
}
