package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
)

// diagnosisSystemInstruction is pinned to the model's dedicated system slot.
// It never travels as a mutable element of the content history, so prompt
// assembly order cannot displace it.
const diagnosisSystemInstruction = `You are an expert plant pathologist. ` +
	`Analyze the supplied crop photo and respond with a single JSON object ` +
	`with these fields: disease, confidence (0-1), severity, stage, ` +
	`yield_impact, spread_risk, recovery, symptoms (array of strings), ` +
	`action_plan {immediate, short_term}, treatments {organic, chemical}. ` +
	`Respond with JSON only, no markdown fences and no commentary.`

const diagnosisUserPrompt = `Diagnose the plant disease visible in this image.`

// GeminiClient performs one diagnosis call against the Gemini API using a
// caller-supplied credential. It holds no credential state of its own; the
// pool selector decides which key each call uses.
type GeminiClient struct {
	model string
}

// NewGeminiClient creates a client bound to a model name,
// e.g. "gemini-1.5-flash".
func NewGeminiClient(model string) *GeminiClient {
	return &GeminiClient{model: model}
}

// Diagnose sends the image to Gemini under the given credential and parses
// the structured diagnosis. Failures are returned raw for the retry
// executor to classify.
func (g *GeminiClient) Diagnose(ctx context.Context, cred Credential, image []byte, mimeType string) (*entities.Prediction, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(string(cred)))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(diagnosisSystemInstruction)},
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(mimeType), image),
		genai.Text(diagnosisUserPrompt),
	)
	if err != nil {
		return nil, err
	}

	return ParsePrediction(candidateText(resp))
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// ParsePrediction decodes a model reply into a Prediction, tolerating
// markdown fences the model sometimes emits despite instructions.
func ParsePrediction(raw string) (*entities.Prediction, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return nil, fmt.Errorf("empty diagnosis from model")
	}

	var p entities.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("malformed diagnosis payload: %w", err)
	}
	return &p, nil
}

func imageFormat(mimeType string) string {
	return strings.TrimPrefix(strings.ToLower(mimeType), "image/")
}
