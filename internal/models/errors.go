package models

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrDirectoryUnavailable is fatal for a request when it hits the
	// primary search; downstream lookups degrade instead.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrComposerUnavailable is always recoverable; the fallback composer
	// substitutes for it.
	ErrComposerUnavailable = errors.New("composer unavailable")

	ErrNoRuleSet = errors.New("no rule set loaded")
)
