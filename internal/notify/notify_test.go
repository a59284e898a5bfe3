package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	var c Collector
	assert.NotNil(t, c.Alerts())
	assert.Empty(t, c.Alerts())

	c.Notify(Success, "saved")
	c.Notify(Warning, "in memory only")
	got := c.Alerts()
	assert.Equal(t, []Alert{{Success, "saved"}, {Warning, "in memory only"}}, got)

	got[0].Message = "changed"
	assert.Equal(t, "saved", c.Alerts()[0].Message)
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	no := No()
	assert.False(t, no.Declined())
	assert.False(t, no.Confirm(ctx, "delete?"))
	assert.True(t, no.Declined())
	assert.Equal(t, []string{"delete?"}, no.Prompts())

	yes := Yes()
	assert.True(t, yes.Confirm(ctx, "overwrite?"))
	assert.False(t, yes.Declined())

	var f Confirmer = ConfirmFunc(func(_ context.Context, p string) bool { return p == "ok" })
	assert.True(t, f.Confirm(ctx, "ok"))
}

func TestLogAndMulti(t *testing.T) {
	var buf bytes.Buffer
	var c Collector
	n := Multi{Log{Logger: zerolog.New(&buf)}, &c}
	n.Notify(Warning, "storage unavailable")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "storage unavailable")
	assert.Len(t, c.Alerts(), 1)
}
