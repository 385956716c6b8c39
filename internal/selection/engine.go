package selection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// maxFolders caps how many folder selections survive a run; the model is
// instructed to pick 2-3 and anything beyond that dilutes the theme.
const maxFolders = 3

// ModelClient is the external generative model that scores the catalog
// against the transcription. Implemented by providers/genai.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Engine produces selection results from transcriptions.
type Engine struct {
	model  ModelClient
	logger zerolog.Logger
}

// NewEngine wires a selection engine to a model client.
func NewEngine(model ModelClient, logger zerolog.Logger) *Engine {
	return &Engine{model: model, logger: logger}
}

// Select runs the full selection algorithm: render the catalog listing, ask
// the model for folder/video picks, parse the reply against the tolerant line
// grammar, then extend the result with the actress consistency pass. Model
// failures yield an empty result rather than an error so the caller can fall
// back to the secondary clip source.
func (e *Engine) Select(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.Catalog == nil || req.Catalog.TotalVideoCount() == 0 {
		e.logger.Info().Msg("selection: catalog empty, returning empty result")
		return &Result{}, nil
	}

	prompt := buildPrompt(req.Transcription, renderCatalogListing(req.Catalog))
	raw, err := e.model.GenerateText(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn().Err(err).Msg("selection: model call failed, returning empty result")
		return &Result{RawResponse: fmt.Sprintf("model error: %v", err)}, nil
	}

	res := parseReply(raw, req.Catalog, e.logger)
	if len(res.Folders) > maxFolders {
		res.Folders = res.Folders[:maxFolders]
	}

	if res.Actress == "" {
		res.Actress = e.inferActress(res)
	}
	if added := applyConsistencyPass(res, req.Catalog); added > 0 {
		e.logger.Info().
			Str("actress", res.Actress).
			Int("added", added).
			Msg("selection: consistency pass extended selection")
	}

	e.logger.Info().
		Strs("folders", res.FolderNames()).
		Int("videos", res.VideoCount()).
		Str("actress", res.Actress).
		Msg("selection: result assembled")

	return res, nil
}

// inferActress applies the filename heuristic to the model's own picks when
// the reply omitted an ACTRESS line.
func (e *Engine) inferActress(res *Result) string {
	for _, f := range res.Folders {
		for _, v := range f.Videos {
			if token := InferActressToken(v.Name, v.FolderPath); token != "" {
				e.logger.Debug().
					Str("file", v.Name).
					Str("actress", token).
					Msg("selection: inferred actress token from filename")
				return token
			}
		}
	}
	return ""
}
