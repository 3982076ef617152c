package domain

import "time"

// UserSettings holds per-user AI provider preferences.
type UserSettings struct {
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	APIKey    string    `json:"api_key,omitempty"`
	Model     string    `json:"model"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaskedKey returns the API key with all but the last four characters hidden.
func (s *UserSettings) MaskedKey() string {
	if s == nil || s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 4 {
		return "****"
	}
	return "****" + s.APIKey[len(s.APIKey)-4:]
}

// HistoryEntry is one remembered input/output pair of a feature.
type HistoryEntry struct {
	ID        string
	UserID    string
	Feature   HistoryFeature
	Input     string
	Output    string
	CreatedAt time.Time
}

// HistoryLimit caps the entries kept per user and feature.
const HistoryLimit = 20
