package batch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// ArtifactRoute is the URL prefix under which receipts are served.
const ArtifactRoute = "/pdfs"

var groupedDigits = money.NewFormatter(0, ".", ",", "", "1")

// FormatYen renders an amount as "¥12,000".
func FormatYen(amount int) string {
	return money.New(int64(amount), money.JPY).Display()
}

// FormatGrouped renders an amount as "12,000".
func FormatGrouped(amount int) string {
	return groupedDigits.Format(int64(amount))
}

// ArtifactURL maps an artifact reference to its public URL.
func ArtifactURL(baseURL, reference string) string {
	segments := strings.Split(reference, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + ArtifactRoute + "/" + strings.Join(segments, "/")
}

// SuccessLine describes an issued receipt for the message sender.
func SuccessLine(s model.Success, baseURL string) string {
	return fmt.Sprintf("%s %s %s → %s",
		s.Entry.Group,
		s.Entry.PayeeLabel,
		FormatYen(s.Entry.Amount),
		ArtifactURL(baseURL, s.Reference))
}

// FailureLine describes an entry that produced no receipt.
func FailureLine(f model.Failure) string {
	switch f.Kind {
	case model.FailureUnregistered:
		return fmt.Sprintf("【未登録】%s %s %s", f.Entry.Group, f.Entry.PayeeLabel, FormatGrouped(f.Entry.Amount))
	case model.FailureCancelled:
		return fmt.Sprintf("【中断】%s %s %s", f.Entry.Group, f.Entry.PayeeLabel, FormatGrouped(f.Entry.Amount))
	default:
		return fmt.Sprintf("作成失敗: %s %s %s (%v)", f.Entry.Group, f.Entry.PayeeLabel, FormatGrouped(f.Entry.Amount), f.Err)
	}
}
