package model

import "time"

// Hall represents an individual screening hall within a cinema.
// Halls own a fixed seat inventory that is generated once when the
// hall is set up.  Capacity mirrors the number of seats created.
//
// Fields:
//  ID        – primary key identifier.
//  CinemaID  – ID of the containing cinema.
//  Name      – hall name, unique per cinema.
//  Capacity  – number of seats in the hall.
//  HallType  – free-form label such as 2D, 3D or IMAX.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hall struct {
	ID        uint64    `json:"id"`        // cinema_halls.id
	CinemaID  uint64    `json:"cinemaId"`  // cinema_halls.cinema_id
	Name      string    `json:"name"`      // cinema_halls.name
	Capacity  uint32    `json:"capacity"`  // cinema_halls.capacity
	HallType  string    `json:"hallType"`  // cinema_halls.hall_type
	CreatedAt time.Time `json:"createdAt"` // cinema_halls.created_at
	UpdatedAt time.Time `json:"updatedAt"` // cinema_halls.updated_at
}
