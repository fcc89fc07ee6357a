package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourse_Lesson(t *testing.T) {
	course := Course{
		Title: "Intro to ML",
		Lessons: []Lesson{
			{Number: 1, Title: "What is Machine Learning?"},
			{Number: 2, Title: "Supervised Learning"},
		},
	}

	lesson, ok := course.Lesson(2)
	assert.True(t, ok)
	assert.Equal(t, "Supervised Learning", lesson.Title)

	_, ok = course.Lesson(3)
	assert.False(t, ok)
}

func TestCourse_Lesson_EmptyCourse(t *testing.T) {
	_, ok := Course{Title: "Empty"}.Lesson(1)
	assert.False(t, ok)
}
