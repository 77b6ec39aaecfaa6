// Package assist provides optional LLM-backed copywriting help for
// newsletter drafts. The whole package is a no-op unless an API key is
// configured.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/atrapalo/newslettergen/internal/config"
	"github.com/atrapalo/newslettergen/internal/newsletter"
)

// ErrDisabled is returned when the assistant is not configured.
var ErrDisabled = errors.New("assist: not enabled")

const systemPrompt = "Eres el copywriter del equipo de email marketing de Atrápalo. " +
	"Escribes en español de España, en tono cercano y directo, sin exclamaciones dobles " +
	"ni mayúsculas gritadas. Respondes solo con el texto pedido, sin explicaciones."

// Assistant generates short marketing copy for cards and subject lines.
type Assistant struct {
	client *openai.Client
	model  string
}

// New creates an assistant, or nil when disabled or missing a key.
func New(cfg config.AssistConfig) *Assistant {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	return &Assistant{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

// SuggestDescription rewrites a card description to fit the card
// budget, keeping the product's selling points.
func (a *Assistant) SuggestDescription(ctx context.Context, card *newsletter.Card) (string, error) {
	if a == nil {
		return "", ErrDisabled
	}

	source := card.DescriptionRaw
	if source == "" {
		source = card.Description
	}

	prompt := fmt.Sprintf(
		"Reescribe esta descripción para una tarjeta de newsletter en un máximo de %d caracteres.\n"+
			"Plan: %s\nDónde: %s\nDescripción original: %s",
		newsletter.MaxDescriptionChars, card.Title, card.Metadata, source,
	)

	out, err := a.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return newsletter.Shorten(out, newsletter.MaxDescriptionChars), nil
}

// SuggestSubjects proposes subject lines for the whole newsletter, one
// per returned entry.
func (a *Assistant) SuggestSubjects(ctx context.Context, campaign string, cards []newsletter.Card) ([]string, error) {
	if a == nil {
		return nil, ErrDisabled
	}

	var titles []string
	for _, c := range cards {
		if c.Title != "" {
			titles = append(titles, c.Title)
		}
	}

	prompt := fmt.Sprintf(
		"Propón 3 asuntos de email para la campaña %q con estos planes: %s.\n"+
			"Máximo 60 caracteres por asunto. Devuelve un asunto por línea, sin numerar.",
		campaign, strings.Join(titles, ", "),
	)

	out, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var subjects []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
