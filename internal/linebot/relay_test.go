package linebot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
)

func lines(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		resp      *batch.Response
		wantReply []string
		wantPush  [][]string
	}{
		{
			name:      "no instructions",
			resp:      &batch.Response{Kind: batch.ResponseNoInstructions},
			wantReply: []string{batch.UsageMessage},
		},
		{
			name:      "no matches pushes failures",
			resp:      &batch.Response{Kind: batch.ResponseNoMatches, Failures: lines("f", 2)},
			wantReply: []string{batch.NoMatchesMessage},
			wantPush:  [][]string{{"f1", "f2"}},
		},
		{
			name:      "interrupted pushes cancelled entries",
			resp:      &batch.Response{Kind: batch.ResponseInterrupted, Failures: lines("f", 1)},
			wantReply: []string{batch.InterruptedMessage},
			wantPush:  [][]string{{"f1"}},
		},
		{
			name:      "few successes fit in the reply",
			resp:      &batch.Response{Kind: batch.ResponseIssued, Successes: lines("s", 3)},
			wantReply: []string{"s1", "s2", "s3"},
		},
		{
			name:      "overflow is pushed in chunks",
			resp:      &batch.Response{Kind: batch.ResponseIssued, Successes: lines("s", 12), Failures: lines("f", 6)},
			wantReply: []string{"s1", "s2", "s3", "s4", "s5"},
			wantPush: [][]string{
				{"s6", "s7", "s8", "s9", "s10"},
				{"s11", "s12"},
				{"f1", "f2", "f3", "f4", "f5"},
				{"f6"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Plan(tt.resp)
			assert.Equal(t, tt.wantReply, d.Reply)
			assert.Equal(t, tt.wantPush, d.Push)
		})
	}
}

func TestPlan_EveryLineDeliveredOnce(t *testing.T) {
	resp := &batch.Response{Kind: batch.ResponseIssued, Successes: lines("s", 11), Failures: lines("f", 4)}
	d := Plan(resp)

	var delivered []string
	delivered = append(delivered, d.Reply...)
	for _, p := range d.Push {
		assert.LessOrEqual(t, len(p), MaxMessagesPerCall)
		delivered = append(delivered, p...)
	}
	assert.Equal(t, append(append([]string{}, resp.Successes...), resp.Failures...), delivered)
}
