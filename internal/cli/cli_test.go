package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Balances"), "Balances")
	assert.Contains(t, FormatPrompt("Amount"), "Amount →")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("ID: 1", "Amount: $10.00")
	assert.Contains(t, out, "ID: 1")
	assert.Contains(t, out, "Amount: $10.00")
	assert.Contains(t, out, "╭")
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("  first \nsecond"))
	ctx := context.Background()

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = r.ReadLine(ctx)
	assert.True(t, IsInputClosed(err))
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressReporter(&buf, "Exporting")

	r.Report(0, 3)
	r.Report(2, 3)
	r.Report(3, 3)

	require.NotNil(t, r.bar)
	assert.Contains(t, buf.String(), "Exporting")
}

func TestInterruptHandler_StopWithoutSignal(t *testing.T) {
	h := NewInterruptHandler(&bytes.Buffer{})
	ctx, stop := h.HandleInterrupts(context.Background())

	stop()
	stop()

	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
}
