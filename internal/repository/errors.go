package repository

import "errors"

// ErrNotFound is returned when a query for a single entity (e.g. FindDraft)
// finds no rows. It hides the driver's sql.ErrNoRows from the layers above;
// the autosave controller relies on it to choose between update and insert.
var ErrNotFound = errors.New("repository: not found")
