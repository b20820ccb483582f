package services

import "errors"

var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	ErrSeasonNotLoaded = errors.New("season data has not been loaded yet")
	ErrWeekNotFound    = errors.New("week is not on the schedule")
	ErrWeekNotPlayed   = errors.New("week has not been played yet")

	ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")

	ErrInvalidCredentials = errors.New("invalid username or password")
)
