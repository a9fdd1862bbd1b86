package linebot

import (
	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
)

// MaxMessagesPerCall is the most messages one reply or push may carry.
const MaxMessagesPerCall = 5

// Delivery is the ordered set of LINE calls for one response.
// Reply goes out with the reply token; each Push chunk is a push call.
type Delivery struct {
	Reply []string
	Push  [][]string
}

// Plan splits a response into one reply and follow-up pushes. Reply tokens
// are single use, so everything past the first chunk is pushed.
func Plan(resp *batch.Response) Delivery {
	var d Delivery

	switch resp.Kind {
	case batch.ResponseNoInstructions, batch.ResponseNoMatches, batch.ResponseInterrupted:
		d.Reply = []string{resp.Headline()}
	default:
		chunks := chunk(resp.Successes, MaxMessagesPerCall)
		if len(chunks) > 0 {
			d.Reply = chunks[0]
			d.Push = append(d.Push, chunks[1:]...)
		}
	}

	d.Push = append(d.Push, chunk(resp.Failures, MaxMessagesPerCall)...)
	return d
}

func chunk(lines []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		out = append(out, lines[start:end])
	}
	return out
}
