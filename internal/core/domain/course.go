package domain

// Lesson is a single lesson within a course.
// Lessons are owned by their course and have no independent lifecycle.
type Lesson struct {
	// Number is the lesson number, positive and unique within a course.
	Number int

	// Title is the human-readable lesson title.
	Title string

	// Link is an optional deep link to the lesson page.
	Link string
}

// Course represents one course in the catalog.
// The title is the sole identifier: re-ingesting a title overwrites its record.
type Course struct {
	// Title uniquely identifies the course (case-sensitive exact string).
	Title string

	// Link is an optional URL to the course page.
	Link string

	// Instructor is the optional instructor name.
	Instructor string

	// Lessons is the ordered lesson list.
	Lessons []Lesson
}

// Lesson returns the lesson with the given number, if present.
func (c Course) Lesson(number int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l, true
		}
	}
	return Lesson{}, false
}

// Chunk is a bounded span of course text stored with provenance metadata.
// Chunks reference their course by title only; no referential integrity is
// enforced, lookups simply miss if the course record was removed.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// CourseTitle names the owning course.
	CourseTitle string

	// LessonNumber is the owning lesson, nil for course-level content.
	LessonNumber *int

	// Index is unique within the course, assigned monotonically at ingestion.
	Index int
}

// CourseOutline is the catalog view of a course: metadata plus the
// ordered lesson list, without any content chunks.
type CourseOutline struct {
	CourseTitle string
	CourseLink  string
	Instructor  string
	Lessons     []Lesson
}
