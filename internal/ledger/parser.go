package ledger

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// linePattern matches "label amount" rows such as "佐藤 12000" or "佐藤 ¥12,000".
// The match is anchored at the start of the line; trailing text is ignored.
var linePattern = regexp.MustCompile(`^([^-\p{Nd}\s¥￥]+)\s*[¥￥]?([\p{Nd},]+)`)

// scanState is the fold accumulator threaded through the lines of a message.
type scanState struct {
	group   model.GroupID
	grouped bool
	entries []model.LedgerEntry
}

// Parse extracts ledger entries from text using table to recognize group lines.
// Lines that are neither group switches nor valid rows are skipped.
func Parse(text string, table GroupTable) []model.LedgerEntry {
	state := scanState{entries: []model.LedgerEntry{}}
	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		state = step(state, line, table)
	}
	return state.entries
}

func step(state scanState, line string, table GroupTable) scanState {
	if group, ok := table.Match(line); ok {
		state.group = group
		state.grouped = true
		return state
	}

	if !state.grouped {
		return state
	}

	label, amount, ok := parseRow(line)
	if !ok {
		return state
	}

	state.entries = append(state.entries, model.LedgerEntry{
		Group:      state.group,
		PayeeLabel: label,
		Amount:     amount,
	})
	return state
}

// parseRow splits a data line into its payee label and amount.
func parseRow(line string) (string, int, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}

	digits := width.Narrow.String(strings.ReplaceAll(m[2], ",", ""))
	amount, err := strconv.Atoi(digits)
	if err != nil || amount < 0 {
		return "", 0, false
	}

	return strings.TrimSpace(m[1]), amount, true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
