package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	malformed := fmt.Errorf("select: %w", &pq.Error{Code: "22P02"})
	unique := &pq.Error{Code: "23505"}

	assert.True(t, isMalformedID(malformed))
	assert.False(t, isMalformedID(unique))
	assert.False(t, isMalformedID(errors.New("connection refused")))

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(malformed))
}
