package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultSlot is the name of the slot holding the credential.
const DefaultSlot = "sp_cmp_token"

// Backend stores one string value. Absence is reported as ok == false with a nil error.
type Backend interface {
	Get() (value string, ok bool, err error)
	Set(value string) error
	Delete() error
}

// FileBackend keeps the value in a single file named after the slot.
type FileBackend struct {
	dir  string
	slot string
}

// NewFileBackend creates a [FileBackend] storing <dir>/<slot>.
func NewFileBackend(dir, slot string) *FileBackend {
	if slot == "" {
		slot = DefaultSlot
	}
	return &FileBackend{dir: dir, slot: slot}
}

// Path returns the slot file location.
func (f *FileBackend) Path() string { return filepath.Join(f.dir, f.slot) }

func (f *FileBackend) Get() (string, bool, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", f.slot, err)
	}

	value := strings.TrimSpace(string(data))
	return value, value != "", nil
}

func (f *FileBackend) Set(value string) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("failed to create slot directory: %w", err)
	}
	if err := os.WriteFile(f.Path(), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", f.slot, err)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove slot %s: %w", f.slot, err)
	}
	return nil
}

// Slots is a keyed value table such as the database slot repository.
type Slots interface {
	GetSlot(name string) (string, bool, error)
	SetSlot(name, value string) error
	DeleteSlot(name string) error
}

// SlotBackend binds one name of a [Slots] table.
type SlotBackend struct {
	slots Slots
	name  string
}

// NewSlotBackend creates a [Backend] over slots[name].
func NewSlotBackend(slots Slots, name string) *SlotBackend {
	if name == "" {
		name = DefaultSlot
	}
	return &SlotBackend{slots: slots, name: name}
}

func (s *SlotBackend) Get() (string, bool, error) { return s.slots.GetSlot(s.name) }
func (s *SlotBackend) Set(value string) error     { return s.slots.SetSlot(s.name, value) }
func (s *SlotBackend) Delete() error              { return s.slots.DeleteSlot(s.name) }

// MemoryBackend holds the value for the lifetime of the process.
type MemoryBackend struct {
	mu    sync.Mutex
	value string
	set   bool
}

func (m *MemoryBackend) Get() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set, nil
}

func (m *MemoryBackend) Set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = value, true
	return nil
}

func (m *MemoryBackend) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = "", false
	return nil
}
