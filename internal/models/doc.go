// Package models defines domain entities and persistence interfaces for the VibeSync client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing VibeSync API payloads
//   - [Credential] : Opaque bearer token for the current session
//   - [Profile] : Display identity of the logged in user
//   - [Room] : Owned room code returned by room creation
//   - [RoomCheck] : Result of probing a peer's room code
//   - [Comparison] : Overlap between two users' liked songs
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [ComparisonRecord] : A finished comparison kept in local history
//
// The pairing [Phase] enumeration and [RoomCode] normalization also live here so that the
// state machine, formatter and TUI agree on them.
package models
