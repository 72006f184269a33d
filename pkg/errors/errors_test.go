package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SetsCodeMessageStack(t *testing.T) {
	err := New(ErrCodeRuleNotFound, "rule r-1 not found")
	assert.Equal(t, ErrCodeRuleNotFound, err.Code)
	assert.Equal(t, "rule r-1 not found", err.Message)
	assert.NotEmpty(t, err.Stack)
}

func TestError_Format(t *testing.T) {
	err := New(ErrCodePackageNotFound, "package missing")
	assert.Equal(t, "[PKG_001] package missing", err.Error())

	withDetail := err.WithDetail("id=cp-9")
	assert.Equal(t, "[PKG_001] package missing: id=cp-9", withDetail.Error())
	// Original is not mutated.
	assert.Empty(t, err.Detail)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := New(ErrCodeCapacityExceeded, "cap hit")
	wrapped := Wrap(inner, CodeUnknown, "commit failed")
	assert.Equal(t, ErrCodeCapacityExceeded, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))
	assert.Equal(t, inner, stderrors.Unwrap(wrapped))
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeConcurrentModification, "stale version")
	wrapped := Wrap(inner, ErrCodeInternal, "assignment failed")
	outer := fmt.Errorf("handler: %w", wrapped)

	assert.True(t, IsCode(outer, ErrCodeConcurrentModification))
	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.False(t, IsCode(outer, ErrCodeRuleNotFound))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeRuleNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodePackageNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeOrganizationNotFound, "x")))
	assert.True(t, IsNotFound(NewNotFound("generic")))
	assert.False(t, IsNotFound(New(ErrCodeValidation, "x")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeNoEligibleOrganization, GetCode(New(ErrCodeNoEligibleOrganization, "none")))

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeCapacityExceeded, "cap"))
	assert.Equal(t, ErrCodeCapacityExceeded, GetCode(wrapped))
}

func TestNewValidation_Format(t *testing.T) {
	err := NewValidation("weight %d out of range", 120)
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Equal(t, "weight 120 out of range", err.Message)
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("pq: connection refused")
	err := New(ErrCodeDatabaseError, "query failed").WithCause(cause)
	assert.Equal(t, cause, stderrors.Unwrap(err))

	var nilErr *AppError
	assert.Nil(t, nilErr.WithCause(cause))
	assert.Nil(t, nilErr.WithDetail("d"))
}
