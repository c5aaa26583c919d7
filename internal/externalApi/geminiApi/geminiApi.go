package geminiApi

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

// FallbackSummary is returned whenever the model call fails for any reason.
// Summarization failures never surface as errors to the caller.
const FallbackSummary = "Summary unavailable."

const systemPrompt = "Summarize the news in 2 lines. Then say whether the sentiment is " +
	"Positive, Negative, or Neutral from an investor's point of view.\n\n"

type GeminiApi struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg *config.Config) *GeminiApi {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		slog.Error("failed on genai.NewClient", slog.String("err", err.Error()))
		panic(err)
	}
	return &GeminiApi{client: client, model: cfg.Gemini.Model}
}

// Summarize produces a two-line investor-oriented summary of the given news
// text. Any failure degrades to FallbackSummary.
func (a *GeminiApi) Summarize(ctx context.Context, text string) string {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GeminiApi.Summarize"

	slog.Debug("Summarize start", slog.String("rqID", rqID), slog.String("op", op))

	contents := genai.Text(systemPrompt + text)
	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		slog.Error("failed on GenerateContent", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return FallbackSummary
	}

	summary := extractText(result)
	if summary == "" {
		slog.Warn("empty summarization response", slog.String("rqID", rqID), slog.String("op", op))
		return FallbackSummary
	}

	slog.Debug("Summarize finished", slog.String("rqID", rqID), slog.String("op", op))

	return summary
}

func extractText(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}
