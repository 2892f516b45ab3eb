package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/quietroom/quiet-room-bot/types"
)

// PostgresStore backs the users, payments, rooms, room_visits, touchpoints
// and config tables. It is the only layer that talks SQL; everything above it
// works with types structs.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var ErrUserNotFound = errors.New("user not found")

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "quiet_room"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "quiet_room"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

const userColumns = `user_id, username, first_name, email, phone_number, joined_at, last_activity,
is_vip, is_diamond, is_sub_active, sub_start, sub_end, last_updated_info,
status, first_room_visit, last_room_visit, total_room_visits`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(
		&u.UserID, &u.Username, &u.FirstName, &u.Email, &u.Phone, &u.JoinedAt, &u.LastActivity,
		&u.IsVIP, &u.IsDiamond, &u.SubActive, &u.SubStart, &u.SubEnd, &u.LastUpdated,
		&u.Status, &u.FirstRoomVisit, &u.LastRoomVisit, &u.TotalRoomVisits,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUser(userID int64) (*types.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	u, err := scanUser(s.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE user_id = $1
`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PostgresStore) GetAllUsers() ([]*types.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY user_id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) AddUser(user *types.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now().UTC()
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	if user.LastActivity.IsZero() {
		user.LastActivity = now
	}
	if user.Status == "" {
		user.Status = "active"
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO users (user_id, username, first_name, email, phone_number, joined_at, last_activity,
  is_vip, is_diamond, is_sub_active, sub_start, sub_end, last_updated_info, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), $13)
ON CONFLICT (user_id) DO NOTHING
`, user.UserID, strings.TrimSpace(user.Username), strings.TrimSpace(user.FirstName),
		strings.TrimSpace(user.Email), strings.TrimSpace(user.Phone), user.JoinedAt, user.LastActivity,
		user.IsVIP, user.IsDiamond, user.SubActive, user.SubStart, user.SubEnd, user.Status)
	return err
}

func (s *PostgresStore) TouchActivity(userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET last_activity = NOW()
WHERE user_id = $1
`, userID)
	return err
}

// ApplySubscription writes only the fields payment reconciliation owns.
// Empty Email/Phone keep the stored value, so existing contact info is never
// clobbered by a payment row.
func (s *PostgresStore) ApplySubscription(userID int64, upd types.SubscriptionUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE users
SET username = $2,
  last_activity = NOW(),
  is_diamond = TRUE,
  is_sub_active = TRUE,
  sub_start = $3,
  sub_end = $4,
  email = CASE WHEN $5 <> '' THEN $5 ELSE email END,
  phone_number = CASE WHEN $6 <> '' THEN $6 ELSE phone_number END,
  last_updated_info = NOW()
WHERE user_id = $1
`, userID, strings.TrimSpace(upd.Username), upd.SubStart, upd.SubEnd,
		strings.TrimSpace(upd.Email), strings.TrimSpace(upd.Phone))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) DeactivateSubscription(userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET is_sub_active = FALSE,
  is_diamond = FALSE,
  last_updated_info = NOW()
WHERE user_id = $1
`, userID)
	return err
}

func (s *PostgresStore) SetVIP(userID int64, vip bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET is_vip = $2,
  last_updated_info = NOW()
WHERE user_id = $1
`, userID, vip)
	return err
}

func (s *PostgresStore) RecordRoomVisitStats(userID int64, visitedAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE users
SET first_room_visit = COALESCE(first_room_visit, $2),
  last_room_visit = $2,
  total_room_visits = total_room_visits + 1,
  last_activity = $2
WHERE user_id = $1
`, userID, visitedAt.UTC())
	return err
}

func (s *PostgresStore) ListUnprocessed() ([]*types.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT id, raw_handle, email, phone, valid_from, valid_until, processed, created_at
FROM payments
WHERE NOT processed
ORDER BY id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*types.Payment, 0)
	for rows.Next() {
		var p types.Payment
		if err := rows.Scan(&p.ID, &p.RawHandle, &p.Email, &p.Phone, &p.ValidFrom, &p.ValidUntil, &p.Processed, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func (s *PostgresStore) MarkProcessed(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
UPDATE payments
SET processed = TRUE
WHERE id = ANY($1)
`, ids)
	return err
}

func (s *PostgresStore) GetRoom(roomID string) (*types.Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var r types.Room
	err := s.pool.QueryRow(ctx, `
SELECT room_id, room_name, room_url, access_level, is_active
FROM rooms
WHERE room_id = $1
`, roomID).Scan(&r.RoomID, &r.RoomName, &r.RoomURL, &r.AccessLevel, &r.IsActive)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) GetActiveRooms() ([]*types.Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT room_id, room_name, room_url, access_level, is_active
FROM rooms
WHERE is_active
ORDER BY room_id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*types.Room, 0)
	for rows.Next() {
		var r types.Room
		if err := rows.Scan(&r.RoomID, &r.RoomName, &r.RoomURL, &r.AccessLevel, &r.IsActive); err != nil {
			return nil, err
		}
		rooms = append(rooms, &r)
	}
	return rooms, rows.Err()
}

func (s *PostgresStore) LogRoomVisit(v *types.RoomVisit) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO room_visits (id, visited_at, user_id, username, room_id, room_name, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, v.ID, v.VisitedAt.UTC(), v.UserID, strings.TrimSpace(v.Username), v.RoomID, v.RoomName, v.Source)
	return err
}

func (s *PostgresStore) LogTouchpoint(t *types.Touchpoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO touchpoints (sent_at, user_id, kind, status, detail)
VALUES ($1, $2, $3, $4, $5)
`, t.SentAt.UTC(), t.UserID, t.Kind, t.Status, t.Detail)
	return err
}

func (s *PostgresStore) GetList(key string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var raw string
	err := s.pool.QueryRow(ctx, `
SELECT value
FROM config
WHERE key = $1
`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return splitList(raw), nil
}

func (s *PostgresStore) SetList(key string, values []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO config (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, key, strings.Join(values, ","))
	return err
}

// splitList parses the comma-joined lists inherited from the config sheet
// layout.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
