package model

import "errors"

// Common errors used across the application
var (
	// Request errors
	ErrValidation = errors.New("invalid request")

	// Roster errors
	ErrPlayerNotFound = errors.New("player not found")

	// Match lifecycle errors
	ErrVictoryNotAvailable = errors.New("no victory data available")
	ErrMatchEnded          = errors.New("match has ended")

	// Storage errors
	ErrPersistence = errors.New("failed to persist match state")
)
