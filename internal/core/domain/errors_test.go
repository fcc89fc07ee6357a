package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrStoreUnavailable,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}

func TestDomainErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("getting course outline: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}
