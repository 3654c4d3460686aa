package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStorage        = fmt.Errorf("storage failure")
	ErrMalformedState = fmt.Errorf("malformed persisted state")

	// Catalog and navigation errors
	ErrCourseNotFound    = fmt.Errorf("course not found")
	ErrLessonUnavailable = fmt.Errorf("lesson unavailable")
	ErrInvalidCatalog    = fmt.Errorf("invalid course catalog")

	// Playback errors
	ErrMedia = fmt.Errorf("media playback failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
