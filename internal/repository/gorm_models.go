package repository

import (
	"time"

	"github.com/axellelanca/urlregistry/internal/models"
)

// ShortURLModel is the GORM row for one record.
type ShortURLModel struct {
	// ID is the record's opaque identifier
	ID string `gorm:"primaryKey;size:36"`

	// Position preserves registry insertion order across reloads
	Position int `gorm:"index"`

	ShortCode   string    `gorm:"uniqueIndex;size:20;not null"`
	OriginalURL string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"index;not null"`

	// IsExpired is stored for inspection only; the registry recomputes it on load
	IsExpired bool

	// Clicks establishes the one-to-many relationship to ClickModel
	Clicks []ClickModel `gorm:"foreignKey:ShortURLID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for ShortURLModel.
func (ShortURLModel) TableName() string {
	return "short_urls"
}

// ClickModel is the GORM row for one click event.
type ClickModel struct {
	ID uint `gorm:"primaryKey"`

	// ShortURLID references the clicked record
	// - index: clicks are always fetched per record
	ShortURLID string `gorm:"index;size:36;not null"`

	// Seq is the click's position in the record's append-only history
	Seq int `gorm:"not null"`

	Timestamp time.Time
	Referrer  string `gorm:"size:255"`
	Location  string `gorm:"size:100"`
}

// TableName returns the table name for ClickModel.
func (ClickModel) TableName() string {
	return "clicks"
}

// fromCore converts a registry record into its row, clicks included.
func fromCore(position int, u *models.ShortURL) ShortURLModel {
	row := ShortURLModel{
		ID:          u.ID,
		Position:    position,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		CreatedAt:   u.CreatedAt,
		ExpiresAt:   u.ExpiresAt,
		IsExpired:   u.IsExpired,
		Clicks:      make([]ClickModel, len(u.Clicks)),
	}
	for i, c := range u.Clicks {
		row.Clicks[i] = ClickModel{
			ShortURLID: u.ID,
			Seq:        i,
			Timestamp:  c.Timestamp,
			Referrer:   c.Referrer,
			Location:   c.Location,
		}
	}
	return row
}

// toCore converts a row back into a registry record. Clicks must already be ordered by Seq.
func (m *ShortURLModel) toCore() models.ShortURL {
	u := models.ShortURL{
		ID:          m.ID,
		OriginalURL: m.OriginalURL,
		ShortCode:   m.ShortCode,
		CreatedAt:   m.CreatedAt,
		ExpiresAt:   m.ExpiresAt,
		IsExpired:   m.IsExpired,
		Clicks:      make([]models.ClickEvent, len(m.Clicks)),
	}
	for i, c := range m.Clicks {
		u.Clicks[i] = models.ClickEvent{
			Timestamp: c.Timestamp,
			Referrer:  c.Referrer,
			Location:  c.Location,
		}
	}
	return u
}
