package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("issued"), SuccessIcon+" issued")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Receipts"), ReceiptIcon+" Receipts")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Summary", "2 issued")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "2 issued")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Group", "Payee", "Amount"}, [][]string{
		{"MINE", "sato", "¥12,000"},
		{"M", "tanaka", "¥8,000"},
	})
	for _, want := range []string{"Group", "Payee", "MINE", "sato", "¥12,000", "tanaka"} {
		assert.Contains(t, out, want)
	}
}
