package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"unknown species", ErrTypeUnknownSpecies, "UNKNOWN_SPECIES"},
		{"missing argument", ErrTypeMissingArgument, "MISSING_ARGUMENT"},
		{"unit mismatch", ErrTypeUnitMismatch, "UNIT_MISMATCH"},
		{"parsing", ErrTypeParsing, "PARSING"},
		{"storage", ErrTypeStorage, "STORAGE"},
		{"validation", ErrTypeValidation, "VALIDATION"},
		{"config", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeValidation, Message: "unknown argument"},
			wantMessage: "[VALIDATION] unknown argument",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "write table",
				Cause:   fmt.Errorf("disk full"),
			},
			wantMessage: "[STORAGE] write table: disk full",
		},
		{
			name:        "error with empty message",
			appError:    &AppError{Type: ErrTypeParsing},
			wantMessage: "[PARSING] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_UnwrapAndContext(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewStorageError("open table", cause).WithContext("path", "/tmp/x.csv")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "/tmp/x.csv", err.Context["path"])

	var appErr *AppError
	wrapped := fmt.Errorf("load: %w", err)
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
	assert.Equal(t, ErrTypeStorage, TypeOf(wrapped))
}

func TestDomainErrors(t *testing.T) {
	t.Run("unknown species", func(t *testing.T) {
		err := fmt.Errorf("resolve feedstock: %w", NewUnknownSpeciesError("unobtainium", "not a formula"))
		assert.True(t, IsUnknownSpecies(err))
		assert.False(t, IsMissingArgument(err))
		assert.Equal(t, ErrTypeUnknownSpecies, TypeOf(err))
		assert.Contains(t, err.Error(), `"unobtainium"`)
	})

	t.Run("missing argument", func(t *testing.T) {
		err := NewMissingArgumentError("catalysis.atom_balance", "xin|rin", "xin", "nin")
		assert.True(t, IsMissingArgument(err))
		assert.Equal(t, "[MISSING_ARGUMENT] catalysis.atom_balance: argument xin|rin could not be resolved (tried xin, nin)", err.Error())
	})

	t.Run("unit mismatch", func(t *testing.T) {
		err := NewUnitMismatchError("add", "mol s^-1", "")
		assert.True(t, IsUnitMismatch(err))
		assert.Equal(t, "[UNIT_MISMATCH] cannot add [mol s^-1] and [dimensionless]", err.Error())
	})

	t.Run("plain error has no type", func(t *testing.T) {
		assert.Equal(t, ErrorType(""), TypeOf(errors.New("boom")))
	})
}
