package document

import (
	"context"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	"go.uber.org/zap"
)

// Ensure Generator implements DocumentGenerator
var _ proposalapp.DocumentGenerator = (*Generator)(nil)

// Generator implements proposal.DocumentGenerator by rendering the built-in
// signed-proposal template and converting it to PDF.
type Generator struct {
	engine   *TemplateEngine
	renderer HTMLRenderer
	logger   *zap.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(renderer HTMLRenderer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		engine:   NewTemplateEngine(),
		renderer: renderer,
		logger:   logger,
	}
}

// RenderSignedProposal renders the signed proposal document as PDF bytes
func (g *Generator) RenderSignedProposal(ctx context.Context, data proposalapp.DocumentData) ([]byte, error) {
	html, err := g.engine.RenderString("signed-proposal", signedProposalTemplate, data)
	if err != nil {
		return nil, err
	}

	pdf, err := g.renderer.HTMLToPDF(ctx, html)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("signed proposal rendered",
		zap.String("number", data.Number),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}
