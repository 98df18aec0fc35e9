package services

import "errors"

// Sentinel errors surfaced by the scoring/standings engine. Handlers map these to
// HTTP statuses; everything else is an internal failure.
var (
	// ErrIncompleteResult: recompute attempted on a fight whose result is not
	// fully set (round is required unless the method is a decision).
	ErrIncompleteResult = errors.New("fight result is not complete")

	// ErrNotFound: the referenced fight, event, user or badge does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrTooEarly: annual award attempted before the season has ended.
	ErrTooEarly = errors.New("season has not ended yet")

	// ErrNoEventsFound: annual award found no events in the target year.
	ErrNoEventsFound = errors.New("no events found for year")

	// ErrNoScoredPicks: annual award found events but no scored picks to rank.
	ErrNoScoredPicks = errors.New("no scored picks found for year")

	// ErrPicksLocked: pick submitted after the event started.
	ErrPicksLocked = errors.New("event has already started, picks are locked")

	// ErrBadgeUnknown: a rule references a badge missing from the catalog.
	ErrBadgeUnknown = errors.New("badge is not in the catalog")
)
