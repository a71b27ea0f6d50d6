package model

import "time"

// Cinema represents a movie theatre venue.  A cinema can contain
// multiple halls.  This struct corresponds to a row in the
// `cinemas` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the cinema.
//  Address     – street address shown on listings.
//  PhoneNumber – box office phone number.
//  Description – free text shown on the cinema page.
//  ImageURL    – cover image.
//  CreatedAt   – timestamp when the cinema was created.
//  UpdatedAt   – timestamp of last update.
type Cinema struct {
	ID          uint64    `json:"id"`          // cinemas.id
	Name        string    `json:"name"`        // cinemas.name
	Address     string    `json:"address"`     // cinemas.address
	PhoneNumber string    `json:"phoneNumber"` // cinemas.phone_number
	Description string    `json:"description"` // cinemas.description
	ImageURL    string    `json:"imageUrl"`    // cinemas.image_url
	CreatedAt   time.Time `json:"createdAt"`   // cinemas.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // cinemas.updated_at
}
