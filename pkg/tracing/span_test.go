package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildSpansShareTrace(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "report", "req-7")
	_, child := StartChildSpan(ctx, "index")
	child.SetAttr("tokens", 12)
	child.End()
	root.End()

	assert.True(t, root.IsRoot())
	assert.False(t, child.IsRoot())
	assert.Equal(t, "req-7", child.TraceID)
	require.Len(t, root.Children, 1)
	assert.Same(t, child, root.Children[0])
	assert.Same(t, root, FromContext(ctx))
}

func TestStartChildWithoutParentIsRoot(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	assert.True(t, span.IsRoot())
	assert.NotEmpty(t, span.TraceID)
	assert.Nil(t, FromContext(context.Background()))
}

func TestLogWritesEverySpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := StartSpan(context.Background(), "report", "")
	_, a := StartChildSpan(ctx, "search")
	a.End()
	_, b := StartChildSpan(ctx, "codec")
	b.End()
	root.End()
	root.Log(logger)

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "msg=span"))
	assert.Contains(t, out, "span=codec")
	assert.Contains(t, out, "depth=1")
}
