package search

import "errors"

// Sentinel errors returned by the engine. Callers match them with
// errors.Is; wrapped forms carry the offending pattern or path.
var (
	// ErrInvalidPattern reports a regex query that failed to compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrExtractionFailed reports a PDF that could not be opened or parsed.
	ErrExtractionFailed = errors.New("pdf text extraction failed")

	// ErrWalkFailed reports a corpus root that could not be enumerated.
	ErrWalkFailed = errors.New("corpus walk failed")

	// ErrReportWrite reports an export file that could not be written.
	ErrReportWrite = errors.New("report write failed")
)
