package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmpl-lang/tmplc/domain"
)

func TestNewErrorCategorizer(t *testing.T) {
	categorizer := NewErrorCategorizer()
	assert.NotNil(t, categorizer)
	assert.IsType(t, &ErrorCategorizerImpl{}, categorizer)
}

func TestCategorize(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		name         string
		errMsg       string
		wantCategory domain.ErrorCategory
	}{
		{"input", "permission denied", domain.ErrorCategoryInput},
		{"input case insensitive", "PERMISSION DENIED", domain.ErrorCategoryInput},
		{"config", "bad toml syntax", domain.ErrorCategoryConfig},
		{"timeout", "context canceled", domain.ErrorCategoryTimeout},
		{"processing", "failed to decode stream header", domain.ErrorCategoryProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.errMsg)
			got := categorizer.Categorize(err)

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, err, got.Original)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestCategorize_NilError(t *testing.T) {
	categorizer := NewErrorCategorizer()
	assert.Nil(t, categorizer.Categorize(nil))
}

func TestCategorize_UnknownPreservesMessage(t *testing.T) {
	categorizer := NewErrorCategorizer()

	got := categorizer.Categorize(errors.New("kaboom"))
	require.NotNil(t, got)
	assert.Equal(t, domain.ErrorCategoryUnknown, got.Category)
	assert.Equal(t, "kaboom", got.Message)
}

func TestGetRecoverySuggestions(t *testing.T) {
	categorizer := NewErrorCategorizer()

	categories := []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryUnknown,
	}
	for _, category := range categories {
		assert.NotEmpty(t, categorizer.GetRecoverySuggestions(category), "category %q", category)
	}

	assert.NotEmpty(t, categorizer.GetRecoverySuggestions(domain.ErrorCategory("Nope")))
}
