package model

import "time"

// Review is a user's rating and comment on a movie.  A user may
// review a movie once.
type Review struct {
	ID        uint64    `json:"id"`
	MovieID   uint64    `json:"movieId"`
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    uint8     `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
