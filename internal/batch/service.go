package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/ledger"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// Messages shown to the sender.
const (
	UsageMessage = "形式: 店舗名を含む行で切替し、その下に『名前 金額』を並べて送ってください\n" +
		"例)\nMINE\n佐藤 12000\n鈴木 15000\nM\n田中 8000"
	NoMatchesMessage   = "該当がありませんでした。"
	InterruptedMessage = "処理が中断されました。"
	RosterErrorPrefix  = "名簿読込エラー"
)

// ResponseKind tells the messaging layer which reply shape to send.
type ResponseKind int

const (
	// ResponseIssued means at least one receipt was issued.
	ResponseIssued ResponseKind = iota
	// ResponseNoMatches means entries were parsed but none produced a receipt.
	ResponseNoMatches
	// ResponseNoInstructions means the message contained no usable entries.
	ResponseNoInstructions
	// ResponseInterrupted means processing was cancelled before any receipt was issued.
	ResponseInterrupted
)

// Response is the outcome of one message, ready to relay.
type Response struct {
	Result    model.BatchResult
	Successes []string
	Failures  []string
	Kind      ResponseKind
}

// Headline returns the message that opens the reply.
func (r *Response) Headline() string {
	switch r.Kind {
	case ResponseNoInstructions:
		return UsageMessage
	case ResponseNoMatches:
		return NoMatchesMessage
	case ResponseInterrupted:
		return InterruptedMessage
	default:
		return ""
	}
}

// Service handles one inbound message end to end.
type Service struct {
	roster       service.RosterSource
	renderer     service.ReceiptRenderer
	orchestrator *Orchestrator
	clock        func() time.Time
	logger       *slog.Logger
	groups       ledger.GroupTable
}

// NewService wires the parser, roster, orchestrator and renderer together.
func NewService(groups ledger.GroupTable, roster service.RosterSource, renderer service.ReceiptRenderer, orchestrator *Orchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		groups:       groups,
		roster:       roster,
		renderer:     renderer,
		orchestrator: orchestrator,
		clock:        time.Now,
		logger:       logger,
	}
}

// WithClock overrides the time source used for issue dates.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Handle parses text, issues receipts and formats the reply lines.
// The returned error is non-nil only when the roster could not be loaded.
func (s *Service) Handle(ctx context.Context, text, baseURL string) (*Response, error) {
	entries := ledger.Parse(text, s.groups)
	if len(entries) == 0 {
		s.logger.Info("message contained no usable instructions")
		return &Response{
			Kind:      ResponseNoInstructions,
			Successes: []string{},
			Failures:  []string{},
		}, nil
	}

	lookup, err := s.roster.LoadRoster(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrRosterUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrRosterUnavailable, err)
		}
		return nil, common.NewUserError(RosterErrorPrefix, err)
	}

	result := s.orchestrator.Process(ctx, entries, lookup, s.renderer.Render, s.clock())

	resp := &Response{
		Result:    result,
		Successes: make([]string, 0, len(result.Successes)),
		Failures:  make([]string, 0, len(result.Failures)),
	}
	for _, success := range result.Successes {
		resp.Successes = append(resp.Successes, SuccessLine(success, baseURL))
	}
	for _, failure := range result.Failures {
		resp.Failures = append(resp.Failures, FailureLine(failure))
	}

	switch {
	case len(result.Successes) > 0:
		resp.Kind = ResponseIssued
	case ctx.Err() != nil:
		resp.Kind = ResponseInterrupted
	default:
		resp.Kind = ResponseNoMatches
	}
	return resp, nil
}
