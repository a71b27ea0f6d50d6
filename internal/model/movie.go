package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movie is a catalog entry.  A movie is "now showing" between its
// release date and optional end date and "coming soon" before release.
type Movie struct {
	ID              uint64          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	PosterURL       string          `json:"posterUrl"`
	BackdropURL     string          `json:"backdropUrl"`
	Genre           string          `json:"genre"`
	ReleaseDate     time.Time       `json:"releaseDate"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	DurationMinutes uint32          `json:"durationMinutes"`
	Rating          decimal.Decimal `json:"rating"`
	TrailerURL      *string         `json:"trailerUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
