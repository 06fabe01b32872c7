package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

// Documents stored as JSONB in per-collection tables. The record document
// is puzzle.GameRecord itself; older rows may still carry a legacy
// top-level "completed" flag, which unmarshalling ignores and marshalling
// never re-emits. Its removal from the schema is intentional.

type userDoc struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

type sessionDoc struct {
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

type adminDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

type adminSessionDoc struct {
	AdminID   string `json:"adminId"`
	CreatedAt string `json:"createdAt"`
}

// DocStore implements Store over per-collection tables with JSONB data
// columns plus extracted columns for lookups.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// --- users and sessions ---

func (s *DocStore) CreateUser(ctx context.Context, name, passwordHash string) (string, error) {
	doc := userDoc{
		ID:           newID(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    nowUTC(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, data) VALUES (?, ?, jsonb(?))`,
		doc.ID, doc.Name, string(data),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return "", ErrDuplicate
	}
	return doc.ID, err
}

func (s *DocStore) UserCredentials(ctx context.Context, name string) (string, string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM users WHERE name = ?`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	var doc userDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return "", "", err
	}
	return doc.ID, doc.PasswordHash, nil
}

func (s *DocStore) UserExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *DocStore) CreateSession(ctx context.Context, userID string) (string, error) {
	token := newID()
	data, err := json.Marshal(sessionDoc{UserID: userID, CreatedAt: nowUTC()})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data) VALUES (?, jsonb(?))`,
		token, string(data),
	)
	return token, err
}

func (s *DocStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, token)
	return err
}

func (s *DocStore) UserFromToken(ctx context.Context, token string) (userSession, error) {
	var sess userSession
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name
		FROM sessions s
		JOIN users u ON u.id = s.data ->> '$.userId'
		WHERE s.id = ?
	`, token).Scan(&sess.UserID, &sess.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

// --- game catalog ---

func (s *DocStore) ListGames(ctx context.Context) ([]puzzle.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json(data) FROM games ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []puzzle.Game
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var g puzzle.Game
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *DocStore) GetGame(ctx context.Context, id string) (puzzle.Game, error) {
	var g puzzle.Game
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT json(data) FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, err
	}
	return g, json.Unmarshal([]byte(data), &g)
}

func (s *DocStore) PutGame(ctx context.Context, g puzzle.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, data) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		g.ID, string(data),
	)
	return err
}

func (s *DocStore) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- records ---

func (s *DocStore) PutRecord(ctx context.Context, rec puzzle.GameRecord, playedDay string) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, user_id, game_id, played_day, created_at, data)
		VALUES (?, ?, ?, ?, ?, jsonb(?))
		ON CONFLICT(id) DO UPDATE SET
			user_id    = excluded.user_id,
			game_id    = excluded.game_id,
			played_day = excluded.played_day,
			created_at = excluded.created_at,
			data       = excluded.data
	`, rec.ID, rec.UserID, rec.GameID, playedDay, rec.CreatedAt, string(data))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return ErrDuplicate
	}
	return err
}

func (s *DocStore) RecordIDForDay(ctx context.Context, userID, gameID, playedDay string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM records
		WHERE user_id = ? AND game_id = ? AND played_day = ?
	`, userID, gameID, playedDay).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (s *DocStore) ListRecords(ctx context.Context, userID, gameID string, limit, offset int) ([]puzzle.GameRecord, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE user_id = ? AND game_id = ?
	`, userID, gameID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT json(data) FROM records
		WHERE user_id = ? AND game_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, gameID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	return records, total, err
}

func (s *DocStore) UserGameRecords(ctx context.Context, userID, gameID string) ([]puzzle.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT json(data) FROM records
		WHERE user_id = ? AND game_id = ?
		ORDER BY created_at
	`, userID, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]puzzle.GameRecord, error) {
	var records []puzzle.GameRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec puzzle.GameRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *DocStore) DeleteRecord(ctx context.Context, recordID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND user_id = ?`, recordID, userID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DocStore) GameRows(ctx context.Context, gameID string) ([]puzzle.RecordRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT json(r.data), u.name
		FROM records r
		JOIN users u ON u.id = r.user_id
		WHERE r.game_id = ?
		ORDER BY r.created_at
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordRows(rows)
}

func (s *DocStore) AllRows(ctx context.Context) ([]puzzle.RecordRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT json(r.data), u.name
		FROM records r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordRows(rows)
}

func scanRecordRows(rows *sql.Rows) ([]puzzle.RecordRow, error) {
	var out []puzzle.RecordRow
	for rows.Next() {
		var data, userName string
		if err := rows.Scan(&data, &userName); err != nil {
			return nil, err
		}
		var rec puzzle.GameRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		out = append(out, puzzle.RecordRow{
			RecordID:  rec.ID,
			GameID:    rec.GameID,
			UserID:    rec.UserID,
			UserName:  userName,
			Failed:    rec.Failed,
			Scores:    rec.Scores,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, rows.Err()
}

// --- follows ---

func (s *DocStore) Follow(ctx context.Context, userID, targetID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (user_id, target_id, created_at) VALUES (?, ?, ?)
	`, userID, targetID, nowUTC())
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return ErrDuplicate
	}
	return err
}

func (s *DocStore) Unfollow(ctx context.Context, userID, targetID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE user_id = ? AND target_id = ?`, userID, targetID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DocStore) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]UserInfo, int, error) {
	return s.listFollowEdge(ctx, userID, limit, offset, `f.user_id`, `f.target_id`)
}

func (s *DocStore) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]UserInfo, int, error) {
	return s.listFollowEdge(ctx, userID, limit, offset, `f.target_id`, `f.user_id`)
}

func (s *DocStore) listFollowEdge(ctx context.Context, userID string, limit, offset int, whereCol, joinCol string) ([]UserInfo, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows f WHERE `+whereCol+` = ?`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, f.created_at
		FROM follows f
		JOIN users u ON u.id = `+joinCol+`
		WHERE `+whereCol+` = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []UserInfo{}
	for rows.Next() {
		var u UserInfo
		if err := rows.Scan(&u.ID, &u.Name, &u.FollowedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *DocStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.followEdgeIDs(ctx, userID, `user_id`, `target_id`)
}

func (s *DocStore) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return s.followEdgeIDs(ctx, userID, `target_id`, `user_id`)
}

func (s *DocStore) followEdgeIDs(ctx context.Context, userID, whereCol, selectCol string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectCol+` FROM follows WHERE `+whereCol+` = ?`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- admins ---

// CreateAdmin is used by seeding only; admin accounts are not exposed
// through the API.
func (s *DocStore) CreateAdmin(ctx context.Context, email, passwordHash string) error {
	doc := adminDoc{
		ID:           newID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    nowUTC(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, data) VALUES (?, ?, jsonb(?))`,
		doc.ID, doc.Email, string(data),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return ErrDuplicate
	}
	return err
}

func (s *DocStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admins WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	var doc adminDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return "", "", err
	}
	return doc.ID, doc.PasswordHash, nil
}

func (s *DocStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	id := newID()
	data, err := json.Marshal(adminSessionDoc{AdminID: adminID, CreatedAt: nowUTC()})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, data) VALUES (?, jsonb(?))`,
		id, string(data),
	)
	return id, err
}

func (s *DocStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *DocStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.data ->> '$.adminId'
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}
