// package services defines the interfaces the rest of the client uses to reach the VibeSync API
package services

import (
	"context"

	"github.com/desertthunder/vibesync/internal/models"
)

// RoomService is the part of the API the room pairing state machine needs.
type RoomService interface {
	// CreateRoom asks the service for a fresh room owned by the current session.
	CreateRoom(ctx context.Context) (*models.Room, error)

	// CheckRoom probes whether code names a live room.
	CheckRoom(ctx context.Context, code models.RoomCode) (*models.RoomCheck, error)

	// JoinRoom pairs with the owner of code and returns the comparison of both libraries.
	JoinRoom(ctx context.Context, code models.RoomCode) (*models.Comparison, error)
}

// CredentialStore is the credential persistence the client reads and updates.
type CredentialStore interface {
	Load() (models.Credential, bool)
	Save(c models.Credential)
	Clear()
}

var _ RoomService = (*APIService)(nil)
