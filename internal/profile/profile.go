package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Profile holds a user's display details and dietary defaults.
type Profile struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username,omitempty"`
	FullName           string    `json:"full_name,omitempty"`
	DietaryPreferences []string  `json:"dietary_preferences"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Update is a change to a profile. Nil fields are left alone.
type Update struct {
	Username           *string  `json:"username"`
	FullName           *string  `json:"full_name"`
	DietaryPreferences []string `json:"dietary_preferences"`
	AvatarURL          *string  `json:"avatar_url"`
}

// Repository is a database-backed repository for profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get returns the user's profile, creating an empty one on first access.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`, userID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var (
		p                             Profile
		username, fullName, avatarURL sql.NullString
		prefs                         string
	)
	err = r.db.QueryRowContext(ctx, `SELECT id, username, full_name, dietary_preferences, avatar_url, created_at, updated_at
		FROM profiles WHERE id = ?`, userID,
	).Scan(&p.ID, &username, &fullName, &prefs, &avatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Username = username.String
	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	if err := json.Unmarshal([]byte(prefs), &p.DietaryPreferences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dietary preferences: %w", err)
	}
	if p.DietaryPreferences == nil {
		p.DietaryPreferences = []string{}
	}
	return &p, nil
}

// Apply writes the set fields of u and returns the stored profile.
func (r *Repository) Apply(ctx context.Context, userID string, u Update) (*Profile, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.Username != nil {
		p.Username = strings.TrimSpace(*u.Username)
	}
	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*u.AvatarURL)
	}
	if u.DietaryPreferences != nil {
		p.DietaryPreferences = cleanList(u.DietaryPreferences)
	}

	prefs, err := json.Marshal(p.DietaryPreferences)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dietary preferences: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `UPDATE profiles
		SET username = ?, full_name = ?, dietary_preferences = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?`,
		nullString(p.Username), nullString(p.FullName), string(prefs), nullString(p.AvatarURL), p.UpdatedAt, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

func cleanList(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
