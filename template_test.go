package oasgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractParams(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"no placeholders", "/pets", nil},
		{"single", "/pets/{petId}", []string{"petId"}},
		{"multiple in order", "/a/{id}/b/{postId}", []string{"id", "postId"}},
		{"repeated name yields one entry", "/x/{id}/y/{id}", []string{"id"}},
		{"snake case name", "/users/{user_id}/posts/{post_id}", []string{"user_id", "post_id"}},
		{"empty braces ignored", "/a/{}/b/{id}", []string{"id"}},
		{"unterminated brace", "/a/{id", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractParams(tt.template))
		})
	}
}

func TestInterpolatePathIdentityWithoutPlaceholders(t *testing.T) {
	got, err := InterpolatePath("/pets", nil)
	require.NoError(t, err)
	assert.Equal(t, "/pets", got)
}

func TestInterpolatePathSubstitution(t *testing.T) {
	got, err := InterpolatePath("/a/{id}/b/{postId}", map[string]any{"id": 1, "postId": 2})
	require.NoError(t, err)
	assert.Equal(t, "/a/1/b/2", got)
}

func TestInterpolatePathRepeatedPlaceholder(t *testing.T) {
	got, err := InterpolatePath("/x/{id}/y/{id}", map[string]any{"id": 7})
	require.NoError(t, err)
	assert.Equal(t, "/x/7/y/7", got)
}

func TestInterpolatePathPercentEncodes(t *testing.T) {
	got, err := InterpolatePath("/files/{name}", map[string]any{"name": "a b/c"})
	require.NoError(t, err)
	assert.Equal(t, "/files/a%20b%2Fc", got)
}

func TestInterpolatePathMissingValue(t *testing.T) {
	_, err := InterpolatePath("/users/{id}", map[string]any{})
	require.Error(t, err)

	var missing *MissingPathParamsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"id"}, missing.Names)
	assert.Equal(t, "/users/{id}", missing.Template)
}

func TestInterpolatePathReportsAllMissingNames(t *testing.T) {
	_, err := InterpolatePath("/a/{id}/b/{postId}/c/{rev}", map[string]any{"postId": 2})
	require.Error(t, err)

	var missing *MissingPathParamsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"id", "rev"}, missing.Names)
}

func TestInterpolatePathNilValueIsMissing(t *testing.T) {
	_, err := InterpolatePath("/users/{id}", map[string]any{"id": nil})
	require.Error(t, err)

	var missing *MissingPathParamsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"id"}, missing.Names)
}
