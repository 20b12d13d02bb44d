package policy

import "errors"

var (
	// ErrRepositoryNil is returned when a store is created without a repository.
	ErrRepositoryNil = errors.New("policy: repository is nil")

	// ErrNotFound is returned by repositories when no document exists for the user.
	ErrNotFound = errors.New("policy: preferences not found")

	// ErrPreferencePersistence is returned when a mutation was applied in memory
	// but could not be saved. The in-memory value stands.
	ErrPreferencePersistence = errors.New("policy: failed to persist preferences")

	// ErrLoadPreferences is returned when stored preferences cannot be read or decoded.
	// The store keeps its defaults.
	ErrLoadPreferences = errors.New("policy: failed to load preferences")

	// ErrUnknownCategory is returned by setters given a category outside the closed set.
	ErrUnknownCategory = errors.New("policy: unknown category")

	// ErrUnknownChannel is returned by setters given an unsupported delivery type.
	ErrUnknownChannel = errors.New("policy: unknown channel")

	// ErrInvalidTimezone is returned when a timezone is not a known IANA name.
	ErrInvalidTimezone = errors.New("policy: invalid timezone")
)
