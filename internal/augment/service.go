// Package augment calls out to an external generative service when local
// knowledge is weak, and degrades to deterministic canned answers when the
// service is unreachable or unconfigured. Gateway failures never surface to
// the caller.
package augment

import (
	"context"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/model"
)

// FeedbackAnalysis is the service's read on a negative feedback event.
type FeedbackAnalysis struct {
	Analysis             string
	NewKnowledge         *model.KnowledgeEntry
	SuggestedImprovement string
}

// Service is the abstract external generative service. Implementations must
// make IsAvailable cheap; absence of the service must not raise.
type Service interface {
	Answer(ctx context.Context, query, context string) (string, error)
	AnalyzeFeedback(ctx context.Context, event model.FeedbackEvent) (*FeedbackAnalysis, error)
	IsAvailable() bool
}

// AnthropicService implements Service against the Anthropic Messages API.
type AnthropicService struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicService creates the service from config. An empty model
// identifier leaves the service permanently unavailable.
func NewAnthropicService(cfg config.Augment) *AnthropicService {
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AnthropicService{
		client:    anthropic.NewClient(),
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
	}
}

// IsAvailable reports whether the service is configured. It makes no network
// call.
func (s *AnthropicService) IsAvailable() bool {
	return s.model != "" && os.Getenv("ANTHROPIC_API_KEY") != ""
}

// Answer sends the query with its knowledge context and returns the raw
// text reply.
func (s *AnthropicService) Answer(ctx context.Context, query, knowledgeContext string) (string, error) {
	prompt := buildAnswerPrompt(query, knowledgeContext)
	return s.complete(ctx, prompt)
}

// AnalyzeFeedback asks the service to analyze a poorly rated answer and
// optionally propose replacement knowledge.
func (s *AnthropicService) AnalyzeFeedback(ctx context.Context, event model.FeedbackEvent) (*FeedbackAnalysis, error) {
	prompt := buildFeedbackPrompt(event)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	analysis, entry, _ := ExtractKnowledgeBlock(text)
	return &FeedbackAnalysis{
		Analysis:     strings.TrimSpace(analysis),
		NewKnowledge: entry,
	}, nil
}

func (s *AnthropicService) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					{OfText: &anthropic.TextBlockParam{Text: prompt}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("augmentation call: %w", err)
	}
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func buildAnswerPrompt(query, knowledgeContext string) string {
	var sb strings.Builder
	sb.WriteString("You are the assistant of a token-mining marketplace platform. Answer the user's question concisely.\n\n")
	if knowledgeContext != "" {
		sb.WriteString("Known platform facts (may be incomplete):\n")
		sb.WriteString(knowledgeContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nIf you can state a durable, reusable fact that answers this question, append it after your answer in exactly this form:\n")
	sb.WriteString(knowledgeBlockTemplate)
	return sb.String()
}

func buildFeedbackPrompt(event model.FeedbackEvent) string {
	var sb strings.Builder
	sb.WriteString("A platform assistant answer was rated poorly. Analyze what knowledge was missing or wrong.\n\n")
	sb.WriteString(fmt.Sprintf("Question: %s\nAnswer: %s\nRating: %d/5\n", event.Question, event.Answer, event.Rating))
	if event.Comment != "" {
		sb.WriteString(fmt.Sprintf("User comment: %s\n", event.Comment))
	}
	sb.WriteString("\nGive a one-paragraph analysis. If you can supply the missing fact, append it in exactly this form:\n")
	sb.WriteString(knowledgeBlockTemplate)
	return sb.String()
}

const knowledgeBlockTemplate = `---KNOWLEDGE---
topic: <short topic>
subtopic: <optional subtopic>
category: <platform|dictionary|general|technical|marketplace|kyc>
confidence: <0-100 integer>
information: <one or more sentences>
---END---
`
