package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewValidationErrorSortsFields(t *testing.T) {
	err := NewValidationError(map[string]string{
		"user_type": "must be a valid value",
		"email":     "cannot be blank",
	})

	assert.Equal(t, "email", err.Fields[0].Field)
	assert.Equal(t, "user_type", err.Fields[1].Field)
	assert.True(t, err.Has("email"))
	assert.False(t, err.Has("password"))
	assert.Contains(t, err.Error(), "user_type: must be a valid value")
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(&ReferentialIntegrityError{Table: "doctors", Reason: "dependent rows exist"}, "delete specialization")

	assert.True(t, IsReferential(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(errors.Wrap(&NotFoundError{Entity: "users", ID: "x"}, "lookup")))
	assert.True(t, IsUniqueness(&UniquenessError{Field: "email"}))
	assert.Equal(t, "referential integrity violation on [doctors]: dependent rows exist", errors.Cause(wrapped).Error())
}

func TestConnectionErrorUnwraps(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := &ConnectionError{Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}
