package domain

// ChunkMeta is the provenance metadata carried with each search hit.
type ChunkMeta struct {
	// CourseTitle names the course the chunk belongs to.
	CourseTitle string

	// LessonNumber is nil for course-level content.
	LessonNumber *int

	// ChunkIndex is the chunk's position within the course.
	ChunkIndex int
}

// SearchResults is an ordered result set from a semantic search.
// Either the parallel Documents/Metadata/Distances slices are populated, or
// Err carries an error description; the two are mutually exclusive.
type SearchResults struct {
	// Documents holds the matched chunk texts, closest first.
	Documents []string

	// Metadata holds the provenance for each document, same order.
	Metadata []ChunkMeta

	// Distances holds the relevance distances; shorter = closer match.
	Distances []float64

	// Err describes a retrieval failure. It is surfaced verbatim to the
	// model as a tool result, so it is a string rather than an error.
	Err string
}

// ErrorResults builds an empty result set carrying an error description.
func ErrorResults(msg string) SearchResults {
	return SearchResults{Err: msg}
}

// IsEmpty reports whether the result set has no documents.
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// Source is the citation trail for one chunk surfaced in an answer:
// a display string plus an optional deep link.
type Source struct {
	// Text is the display string, e.g. "Course Title - Lesson 2".
	Text string `json:"text"`

	// Link is the optional deep link to the cited lesson or course.
	Link string `json:"link,omitempty"`
}
