package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/pkg/log"
)

func TestLogToggle_WritesAuditFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Level: "info", Output: &buf}))

	LogToggle(ctx, ActionLike, "u1", "snippet:s1", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionLike, entry[FieldAction])
	assert.Equal(t, "u1", entry[log.FieldUserID])
	assert.Equal(t, "snippet:s1", entry[FieldTargetID])
	assert.Equal(t, true, entry[FieldActive])
}
