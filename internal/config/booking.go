package config

import "time"

// BookingConfig tunes the booking service.
type BookingConfig struct {
	MaxSeatsPerBooking int           // upper bound on seats in one booking
	PendingTTL         time.Duration // unpaid bookings older than this are cancelled
	ExpirySchedule     string        // cron spec for the expiry sweep
	ExpiryBatchSize    int           // bookings cancelled per sweep at most
	TokenPurgeSchedule string        // cron spec for deleting dead refresh tokens
}

// LoadBookingConfig reads BOOKING_* environment variables.
func LoadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		MaxSeatsPerBooking: envInt("BOOKING_MAX_SEATS", 8),
		PendingTTL:         envDur("BOOKING_PENDING_TTL", 15*time.Minute),
		ExpirySchedule:     envStr("BOOKING_EXPIRY_SCHEDULE", "@every 1m"),
		ExpiryBatchSize:    envInt("BOOKING_EXPIRY_BATCH", 100),
		TokenPurgeSchedule: envStr("TOKEN_PURGE_SCHEDULE", "@hourly"),
	}
	if cfg.MaxSeatsPerBooking < 1 {
		cfg.MaxSeatsPerBooking = 8
	}
	if cfg.ExpiryBatchSize < 1 {
		cfg.ExpiryBatchSize = 100
	}
	return cfg
}
