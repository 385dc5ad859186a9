package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/apperror"
)

func TestTarget(t *testing.T) {
	kind, id, err := Target(domain.TargetRequest{DocID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentDoc, kind)
	assert.Equal(t, "d1", id)

	for name, req := range map[string]domain.TargetRequest{
		"none": {},
		"two":  {SnippetID: "s1", BugID: "b1"},
		"all":  {SnippetID: "s1", DocID: "d1", BugID: "b1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Target(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
			msg, _, ok := apperror.Message(err)
			require.True(t, ok)
			assert.Contains(t, msg, "exactly one")
		})
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	err := Struct(domain.CreateCommentRequest{TargetRequest: domain.TargetRequest{SnippetID: "s1"}})
	require.Error(t, err)
	msg, field, ok := apperror.Message(err)
	require.True(t, ok)
	assert.Equal(t, "content", field)
	assert.Equal(t, "content is required", msg)

	err = Struct(domain.CreateCommentRequest{
		TargetRequest: domain.TargetRequest{SnippetID: "s1"},
		Content:       strings.Repeat("x", 1001),
	})
	require.Error(t, err)
	_, field, _ = apperror.Message(err)
	assert.Equal(t, "content", field)

	assert.NoError(t, Struct(domain.CreateCommentRequest{
		TargetRequest: domain.TargetRequest{BugID: "b1"},
		Content:       "looks good",
	}))
}

func TestRoomID(t *testing.T) {
	id, err := RoomID("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = RoomID(strings.Repeat("a", MaxRoomIDLength))
	assert.NoError(t, err)

	// Length counts characters, not bytes.
	wide := strings.Repeat("é", MaxRoomIDLength)
	id, err = RoomID(wide)
	require.NoError(t, err)
	assert.Equal(t, wide, id)

	for name, v := range map[string]any{
		"empty":     "",
		"too long":  strings.Repeat("a", MaxRoomIDLength+1),
		"too wide":  strings.Repeat("é", MaxRoomIDLength+1),
		"number":    12345,
		"float":     float64(12345),
		"nil":       nil,
		"structure": map[string]any{"id": "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := RoomID(v)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCleanTags(t *testing.T) {
	long := strings.Repeat("t", 51)
	in := []string{"  Go ", "", long, "RUST"}
	for i := 0; i < 12; i++ {
		in = append(in, "x")
	}
	out := CleanTags(in)
	assert.Len(t, out, 10)
	assert.Equal(t, []string{"go", "rust"}, out[:2])
	assert.NotContains(t, out, long)
	assert.Empty(t, CleanTags(nil))

	accented := strings.Repeat("ü", 50)
	assert.Equal(t, []string{accented}, CleanTags([]string{accented, strings.Repeat("ü", 51)}))
}
