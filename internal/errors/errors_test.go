package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.GetTimestamp().IsZero())
}

func TestBuildInheritsWrappedCategory(t *testing.T) {
	t.Parallel()

	inner := NotFound("store", "sound not found")
	outer := New(fmt.Errorf("select failed: %w", inner)).Component("api").Build()

	assert.Equal(t, CategoryNotFound, outer.Category)
	assert.True(t, IsNotFound(outer))
	assert.Equal(t, "api", outer.GetComponent())
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		notFound     bool
		missingInput bool
	}{
		{"not found", NotFound("store", "missing"), true, false},
		{"missing input", MissingInput("api", "no file"), false, true},
		{"wrapped missing input", fmt.Errorf("upload: %w", MissingInput("api", "no file")), false, true},
		{"plain error", fmt.Errorf("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.missingInput, IsMissingInput(tt.err))
		})
	}
}

func TestContextIsCopied(t *testing.T) {
	t.Parallel()

	ee := Newf("write failed").
		Category(CategoryFileIO).
		Context("path", "uploads").
		FileContext("alarm.wav", 2048).
		Build()

	ctx := ee.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "uploads", ctx["path"])
	assert.Equal(t, "alarm.wav", ctx["file_name"])
	assert.Equal(t, "small", ctx["file_size_category"])

	ctx["path"] = "mutated"
	assert.Equal(t, "uploads", ee.GetContext()["path"])
}

func TestIsMatchesByCategory(t *testing.T) {
	t.Parallel()

	a := NotFound("store", "a")
	b := NotFound("api", "b")
	c := MissingInput("api", "c")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}
