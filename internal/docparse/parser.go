// Package docparse parses course scripts into courses and content chunks.
//
// A course script is a plain-text document with a metadata header
// followed by lesson blocks:
//
//	Course Title: Introduction to Machine Learning
//	Course Link: https://example.com/ml-course
//	Course Instructor: Dr. Jane Smith
//
//	Lesson 1: What is Machine Learning?
//	Lesson Link: https://example.com/ml-course/lesson1
//	Lesson transcript text ...
package docparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/studium-labs/studium-cli/internal/core/domain"
)

// Header prefixes recognised in the document preamble.
const (
	prefixCourseTitle      = "Course Title:"
	prefixCourseLink       = "Course Link:"
	prefixCourseInstructor = "Course Instructor:"
	prefixLessonLink       = "Lesson Link:"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// Options configures parsing and chunking.
type Options struct {
	// ChunkSize is the chunk budget in characters (default 800).
	ChunkSize int

	// Overlap is the chunk overlap in characters (default 100).
	Overlap int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = DefaultOverlap
	}
	return o
}

// ParseFile parses a course script from disk.
// The file name (without extension) is the fallback course title when the
// header carries none.
func ParseFile(path string, opts Options) (*domain.Course, []domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open course document: %w", err)
	}
	defer f.Close()

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, fallback, opts)
}

// Parse parses a course script from a reader.
func Parse(r io.Reader, fallbackTitle string, opts Options) (*domain.Course, []domain.Chunk, error) {
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read course document: %w", err)
	}

	course := &domain.Course{Title: fallbackTitle}

	// Header: title, link and instructor may appear in any order before
	// the first lesson marker or content line.
	body := 0
	for body < len(lines) {
		line := strings.TrimSpace(lines[body])
		switch {
		case strings.HasPrefix(line, prefixCourseTitle):
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, prefixCourseTitle))
		case strings.HasPrefix(line, prefixCourseLink):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, prefixCourseLink))
		case strings.HasPrefix(line, prefixCourseInstructor):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, prefixCourseInstructor))
		case line == "":
			// skip blank header lines
		default:
			goto headerDone
		}
		body++
	}
headerDone:
	if course.Title == "" {
		return nil, nil, fmt.Errorf("course document has no title: %w", domain.ErrInvalidInput)
	}

	chunks := parseLessons(course, lines[body:], opts)
	return course, chunks, nil
}

// parseLessons walks the body, collecting lesson blocks and producing
// context-prefixed chunks. Content before the first lesson marker becomes
// course-level chunks with no lesson number.
func parseLessons(course *domain.Course, lines []string, opts Options) []domain.Chunk {
	var chunks []domain.Chunk
	chunkIndex := 0

	var currentLesson *domain.Lesson
	var content []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(content, "\n"))
		content = nil
		if text == "" {
			return
		}

		var lessonNumber *int
		prefix := fmt.Sprintf("Course %s content: ", course.Title)
		if currentLesson != nil {
			n := currentLesson.Number
			lessonNumber = &n
			prefix = fmt.Sprintf("Course %s Lesson %d content: ", course.Title, n)
		}

		for _, piece := range ChunkText(text, opts.ChunkSize, opts.Overlap) {
			chunks = append(chunks, domain.Chunk{
				Content:      prefix + piece,
				CourseTitle:  course.Title,
				LessonNumber: lessonNumber,
				Index:        chunkIndex,
			})
			chunkIndex++
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			flush()
			if currentLesson != nil {
				course.Lessons = append(course.Lessons, *currentLesson)
			}
			number, _ := strconv.Atoi(m[1])
			currentLesson = &domain.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if currentLesson != nil && currentLesson.Link == "" && len(content) == 0 &&
			strings.HasPrefix(line, prefixLessonLink) {
			currentLesson.Link = strings.TrimSpace(strings.TrimPrefix(line, prefixLessonLink))
			continue
		}

		if line == "" && len(content) == 0 {
			continue
		}
		content = append(content, raw)
	}

	flush()
	if currentLesson != nil {
		course.Lessons = append(course.Lessons, *currentLesson)
	}

	return chunks
}
