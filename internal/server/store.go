package server

import (
	"context"
	"errors"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint (user name, follow
// pair, record day slot) is violated.
var ErrDuplicate = errors.New("already exists")

type userSession struct {
	UserID   string
	UserName string
}

// UserInfo is the public identity shape returned by follow listings.
type UserInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FollowedAt string `json:"followedAt,omitempty"`
}

// Store is the persistence boundary: a record store addressed per
// collection with whole-document upsert-by-ID semantics. Implementations
// must treat record writes as replace-whole-row, never patch.
type Store interface {
	// Users and sessions.
	CreateUser(ctx context.Context, name, passwordHash string) (string, error)
	UserCredentials(ctx context.Context, name string) (id, passwordHash string, err error)
	UserExists(ctx context.Context, id string) (bool, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, token string) error
	UserFromToken(ctx context.Context, token string) (userSession, error)

	// Game catalog.
	ListGames(ctx context.Context) ([]puzzle.Game, error)
	GetGame(ctx context.Context, id string) (puzzle.Game, error)
	PutGame(ctx context.Context, g puzzle.Game) error
	DeleteGame(ctx context.Context, id string) error

	// Records. playedDay is the canonical day slot for the
	// one-record-per-user-per-game-per-day rule.
	PutRecord(ctx context.Context, rec puzzle.GameRecord, playedDay string) error
	RecordIDForDay(ctx context.Context, userID, gameID, playedDay string) (string, error)
	ListRecords(ctx context.Context, userID, gameID string, limit, offset int) ([]puzzle.GameRecord, int, error)
	UserGameRecords(ctx context.Context, userID, gameID string) ([]puzzle.GameRecord, error)
	DeleteRecord(ctx context.Context, recordID, userID string) error
	GameRows(ctx context.Context, gameID string) ([]puzzle.RecordRow, error)
	AllRows(ctx context.Context) ([]puzzle.RecordRow, error)

	// Follows.
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]UserInfo, int, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]UserInfo, int, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)

	// Admin credentials and sessions.
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
}
