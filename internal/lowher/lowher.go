// Package lowher wires the transform pipeline: span extraction,
// masking, the case transform, and restoration. One Transformer is
// built per configuration and exposes a single Transform capability;
// each call is independent and keeps no state behind.
package lowher

import (
	"context"
	"io"

	"lowher/internal/config"
	"lowher/internal/extractor"
	"lowher/internal/logger"
	"lowher/internal/mask"
	"lowher/internal/tagger"
	"lowher/internal/transform"
	"lowher/internal/types"
)

// Transformer lowercases prose while preserving protected spans. Safe
// for concurrent use; all fields are set at construction.
type Transformer struct {
	mode      types.Mode
	extractor *extractor.Extractor
	caser     *transform.CaseTransformer
	closer    io.Closer
}

// New builds a Transformer from configuration. In entity mode the
// requested tagger backend is constructed once here; if a model-backed
// backend cannot be built, the rule tagger takes its place with a
// warning, so a missing model never blocks the transform.
func New(ctx context.Context, cfg *config.Config) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case types.ModeRegex:
		return &Transformer{
			mode: cfg.Mode,
			extractor: extractor.New(extractor.Options{
				ProtectCapitalized: cfg.PreserveCapitalized,
				ProtectAcronyms:    true,
			}),
			caser: transform.NewBlind(),
		}, nil

	case types.ModeEntity:
		// Only code spans are pre-masked; word-level case decisions
		// belong to the tagger.
		tg := buildTagger(ctx, cfg)
		closer, _ := tg.(io.Closer)
		return &Transformer{
			mode:      cfg.Mode,
			extractor: extractor.New(extractor.Options{}),
			caser:     transform.NewTokenwise(tg),
			closer:    closer,
		}, nil

	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"unrecognized mode", string(cfg.Mode), nil)
	}
}

// buildTagger constructs the configured tagger backend, degrading to
// the rule tagger when a model-backed one cannot be built.
func buildTagger(ctx context.Context, cfg *config.Config) tagger.Tagger {
	switch cfg.Tagger {
	case types.TaggerONNX:
		t, err := tagger.NewONNXTagger(tagger.ONNXConfig{
			ModelPath:   cfg.ModelPath,
			VocabPath:   cfg.VocabPath,
			LabelsPath:  cfg.LabelsPath,
			LibraryPath: cfg.OnnxLibPath,
		})
		if err != nil {
			logger.Warn("ONNX tagger unavailable, using rule tagger", logger.Err(err))
			return tagger.NewRuleTagger()
		}
		return t

	case types.TaggerLLM:
		t, err := tagger.NewLLMTagger(ctx, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			logger.Warn("LLM tagger unavailable, using rule tagger", logger.Err(err))
			return tagger.NewRuleTagger()
		}
		return t

	default:
		return tagger.NewRuleTagger()
	}
}

// NewWithTagger builds an entity-mode Transformer around an injected
// tagger. Useful when the caller manages the tagger lifecycle itself.
func NewWithTagger(t tagger.Tagger) *Transformer {
	return &Transformer{
		mode:      types.ModeEntity,
		extractor: extractor.New(extractor.Options{}),
		caser:     transform.NewTokenwise(t),
	}
}

// Close releases backend resources, such as an ONNX session. Safe to
// call on transformers whose backend holds none.
func (t *Transformer) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Transform lowercases text, preserving code spans plus whatever the
// mode protects: capitalized words and acronyms, or tagged entities and
// uppercase tokens. Empty input yields empty output. The span mapping lives only
// for the duration of the call.
func (t *Transformer) Transform(ctx context.Context, text string) (*types.TransformResult, error) {
	if text == "" {
		return &types.TransformResult{}, nil
	}

	spans := t.extractor.Extract(text)
	masked, mapping := mask.Mask(text, spans)

	transformed, tokenCount, err := t.caser.Apply(ctx, masked)
	if err != nil {
		return nil, err
	}

	// Placeholders destroyed by the transform degrade that span, not
	// the whole call.
	warnings := validateTransformed(transformed, mapping)

	output := mask.Restore(transformed, mapping)
	warnings = append(warnings, validateOutput(output, spans)...)

	logger.Info("transform completed",
		logger.String("mode", string(t.mode)),
		logger.Int("spanCount", len(spans)),
		logger.Int("tokenCount", tokenCount),
		logger.Int("inputLength", len(text)),
		logger.Int("outputLength", len(output)))

	return &types.TransformResult{
		OriginalText:    text,
		TransformedText: output,
		SpanCount:       len(spans),
		TokenCount:      tokenCount,
		Warnings:        warnings,
	}, nil
}
