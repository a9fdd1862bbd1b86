package receipt

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

const (
	embeddedFamily = "ReceiptFont"
	fallbackFamily = "Helvetica"
)

// Config holds the renderer settings.
type Config struct {
	FontPath    string // Optional UTF-8 TrueType font
	MaxAttempts int    // Output path suffixes to try, DefaultMaxAttempts when zero
}

// Renderer draws receipts as PDF files. It is safe for concurrent use.
type Renderer struct {
	logger      *slog.Logger
	font        []byte
	maxAttempts int
}

// NewRenderer creates a renderer. A font that is missing or cannot be loaded
// is logged and replaced by the built-in fallback.
func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Renderer{
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
	}

	if cfg.FontPath != "" {
		font, err := loadFont(cfg.FontPath)
		if err != nil {
			logger.Warn("receipt font unavailable, using fallback",
				"path", cfg.FontPath,
				"fallback", fallbackFamily,
				"error", err)
		} else {
			r.font = font
		}
	}

	return r
}

// UsesEmbeddedFont reports whether the configured font is in use.
func (r *Renderer) UsesEmbeddedFont() bool {
	return r.font != nil
}

// Render draws spec and writes it to a fresh path derived from spec.OutputPath.
func (r *Renderer) Render(spec model.ReceiptSpec) (model.ReceiptArtifact, error) {
	data, err := r.draw(Layout(spec))
	if err != nil {
		return model.ReceiptArtifact{}, common.NewRenderError(spec.OutputPath, err)
	}

	path, err := Publish(spec.OutputPath, data, r.maxAttempts)
	if err != nil {
		return model.ReceiptArtifact{}, common.NewRenderError(spec.OutputPath, err)
	}

	r.logger.Debug("receipt rendered",
		"path", path,
		"payee", spec.PayeeLabel,
		"amount", spec.Amount)

	return model.ReceiptArtifact{Path: path}, nil
}

func (r *Renderer) draw(plan Plan) ([]byte, error) {
	// fpdf swaps width and height for landscape pages.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: PageHeight, Ht: PageWidth},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("領収書", true)
	pdf.SetCreator("the-receipts-must-flow", true)

	family := fallbackFamily
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if r.font != nil {
		pdf.AddUTF8FontFromBytes(embeddedFamily, "", r.font)
		family = embeddedFamily
		translate = func(s string) string { return s }
	}

	pdf.AddPage()

	for _, item := range plan.Items {
		switch item.Kind {
		case ItemFilledRect:
			pdf.SetFillColor(item.Color.R, item.Color.G, item.Color.B)
			pdf.Rect(item.X, item.Y, item.W, item.H, "F")
		case ItemStrokedRect:
			pdf.SetDrawColor(item.Color.R, item.Color.G, item.Color.B)
			pdf.Rect(item.X, item.Y, item.W, item.H, "D")
		case ItemText:
			pdf.SetFont(family, "", item.Size)
			pdf.SetTextColor(item.Color.R, item.Color.G, item.Color.B)
			pdf.Text(item.X, item.Y, translate(item.Text))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to finalize pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont reads a TrueType font and checks that fpdf can embed it.
func loadFont(path string) (font []byte, err error) {
	font, err = os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			font, err = nil, fmt.Errorf("font rejected: %v", p)
		}
	}()

	probe := fpdf.New("P", "mm", "A4", "")
	probe.AddUTF8FontFromBytes(embeddedFamily, "", font)
	probe.AddPage()
	probe.SetFont(embeddedFamily, "", 12)
	probe.Text(10, 10, "領収書 ¥")
	if err := probe.Output(io.Discard); err != nil {
		return nil, err
	}
	return font, nil
}
