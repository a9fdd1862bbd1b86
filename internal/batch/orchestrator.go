// Package batch turns parsed ledger entries into issued receipts and
// formats the outcome for the messaging layer.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// IssueDateLayout formats the issue date printed on receipts.
const IssueDateLayout = "2006年01月02日"

// DefaultLookupTimeout bounds a single roster lookup.
const DefaultLookupTimeout = 5 * time.Second

// RenderFunc renders one receipt.
type RenderFunc func(spec model.ReceiptSpec) (model.ReceiptArtifact, error)

// Config holds the orchestrator settings.
type Config struct {
	Issuer        string
	OutputDir     string
	LookupTimeout time.Duration
	Concurrency   int // Parallel renders; entries are processed one at a time when <= 1
}

// Orchestrator resolves and renders the entries of one message.
type Orchestrator struct {
	logger    *slog.Logger
	onStart   func(total int)
	onOutcome func(index int)
	config    Config
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = DefaultLookupTimeout
	}
	return &Orchestrator{config: config, logger: logger}
}

// OnStart registers a callback invoked with the entry count before processing.
func (o *Orchestrator) OnStart(fn func(total int)) {
	o.onStart = fn
}

// OnOutcome registers a callback invoked after each entry is resolved.
func (o *Orchestrator) OnOutcome(fn func(index int)) {
	o.onOutcome = fn
}

type outcome struct {
	success *model.Success
	failure *model.Failure
}

// Process resolves every entry against lookup and renders a receipt for each
// hit. Failures are recorded per entry and never stop the batch; the result
// holds exactly one outcome per entry, each list in entry order.
func (o *Orchestrator) Process(ctx context.Context, entries []model.LedgerEntry, lookup service.RosterLookup, render RenderFunc, today time.Time) model.BatchResult {
	outcomes := make([]outcome, len(entries))
	issueDate := today.Format(IssueDateLayout)
	if o.onStart != nil {
		o.onStart(len(entries))
	}

	if o.config.Concurrency <= 1 {
		for i, entry := range entries {
			outcomes[i] = o.processEntry(ctx, i, entry, lookup, render, issueDate)
			o.notify(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.config.Concurrency)
		for i, entry := range entries {
			i, entry := i, entry
			g.Go(func() error {
				outcomes[i] = o.processEntry(ctx, i, entry, lookup, render, issueDate)
				o.notify(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := model.BatchResult{
		Successes: []model.Success{},
		Failures:  []model.Failure{},
	}
	for _, oc := range outcomes {
		if oc.success != nil {
			result.Successes = append(result.Successes, *oc.success)
		} else {
			result.Failures = append(result.Failures, *oc.failure)
		}
	}

	o.logger.Info("batch processed",
		"entries", len(entries),
		"issued", len(result.Successes),
		"failed", len(result.Failures))

	return result
}

func (o *Orchestrator) notify(i int) {
	if o.onOutcome != nil {
		o.onOutcome(i)
	}
}

func (o *Orchestrator) processEntry(ctx context.Context, i int, entry model.LedgerEntry, lookup service.RosterLookup, render RenderFunc, issueDate string) outcome {
	if err := ctx.Err(); err != nil {
		return cancelled(i, entry, err)
	}

	key := roster.NormalizeKey(entry.PayeeLabel)

	record, err := o.lookup(ctx, lookup, key)
	if err != nil {
		// Only the per-lookup timeout counts as a miss; a cancelled batch does not.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelled(i, entry, ctxErr)
		}
		if !errors.Is(err, common.ErrNotFound) {
			o.logger.Warn("roster lookup failed",
				"payee", entry.PayeeLabel,
				"key", key,
				"error", err)
		}
		return outcome{failure: &model.Failure{
			Index: i,
			Entry: entry,
			Kind:  model.FailureUnregistered,
			Err:   err,
		}}
	}

	artifact, err := render(o.buildSpec(entry, record, issueDate))
	if err != nil {
		o.logger.Error("receipt render failed",
			"payee", entry.PayeeLabel,
			"amount", entry.Amount,
			"error", err)
		return outcome{failure: &model.Failure{
			Index: i,
			Entry: entry,
			Kind:  model.FailureRenderFailed,
			Err:   err,
		}}
	}

	return outcome{success: &model.Success{
		Index:     i,
		Entry:     entry,
		Artifact:  artifact,
		Reference: o.reference(artifact.Path),
	}}
}

func cancelled(i int, entry model.LedgerEntry, err error) outcome {
	return outcome{failure: &model.Failure{
		Index: i,
		Entry: entry,
		Kind:  model.FailureCancelled,
		Err:   err,
	}}
}

func (o *Orchestrator) lookup(ctx context.Context, lookup service.RosterLookup, key string) (*model.RosterRecord, error) {
	if key == "" {
		return nil, common.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.LookupTimeout)
	defer cancel()

	record, err := lookup.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, common.ErrNotFound
	}
	return record, nil
}

func (o *Orchestrator) buildSpec(entry model.LedgerEntry, record *model.RosterRecord, issueDate string) model.ReceiptSpec {
	return model.ReceiptSpec{
		Issuer:     o.config.Issuer,
		PayeeLabel: entry.PayeeLabel,
		LegalName:  record.LegalName,
		Address:    record.Address,
		Phone:      record.Phone,
		Birthdate:  record.Birthdate,
		IssueDate:  issueDate,
		Amount:     entry.Amount,
		OutputPath: filepath.Join(o.config.OutputDir, FileName(entry)),
	}
}

// reference returns path relative to the output directory in slash form.
func (o *Orchestrator) reference(path string) string {
	rel, err := filepath.Rel(o.config.OutputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

var fileNameReplacer = strings.NewReplacer("/", "_", `\`, "_")

// FileName is the base file name for an entry's receipt.
func FileName(entry model.LedgerEntry) string {
	return fileNameReplacer.Replace(fmt.Sprintf("%s_%d.pdf", entry.PayeeLabel, entry.Amount))
}
