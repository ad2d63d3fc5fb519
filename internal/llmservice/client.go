package llmservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
	"pdf-rag/internal/promptbuilder"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// GenerateContent sends messages to the configured chat model.
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, tools []llms.Tool, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	log.Debug().Str("model", llmConfig.Model).Str("provider", llmConfig.Provider).Msg("Generating content")

	model, err := newModel(llmConfig)
	if err != nil {
		return nil, err
	}

	if len(tools) > 0 {
		return model.GenerateContent(ctx, messages, llms.WithTools(tools))
	}
	return model.GenerateContent(ctx, messages)
}

func newModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	if llmConfig.Provider == "ollama" {
		return ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	}
	return openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
}

// Answer runs a grounded prompt through the chat model and returns the
// plain-text answer. Model failures are tagged as LLM-collaborator errors.
func Answer(ctx context.Context, llmConfig *config.LLMConfig, prompt models.Prompt) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.System),
		llms.TextParts(llms.ChatMessageTypeHuman, promptbuilder.UserMessage(prompt)),
	}

	res, err := GenerateContent(ctx, llmConfig, nil, messages)
	if err != nil {
		return "", models.NewExternalError(models.CollaboratorLLM, err)
	}
	if len(res.Choices) == 0 {
		return "", models.NewExternalError(models.CollaboratorLLM, fmt.Errorf("no choices in model response"))
	}
	return stripThinkTags(res.Choices[0].Content), nil
}

var numberingRe = regexp.MustCompile(`^\s*\d+[\).\s-]*`)

// FollowUpQuestions asks the chat model for three brief follow-up questions
// derived from an answer, one per line, with any numbering stripped.
func FollowUpQuestions(ctx context.Context, llmConfig *config.LLMConfig, answer string) ([]string, error) {
	prompt := fmt.Sprintf(models.FollowUpPromptTemplate, answer)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are a concise question generator."),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	res, err := GenerateContent(ctx, llmConfig, nil, messages)
	if err != nil {
		return nil, models.NewExternalError(models.CollaboratorLLM, err)
	}
	if len(res.Choices) == 0 {
		return nil, models.NewExternalError(models.CollaboratorLLM, fmt.Errorf("no choices in model response"))
	}

	var questions []string
	for _, line := range strings.Split(stripThinkTags(res.Choices[0].Content), "\n") {
		line = strings.TrimSpace(numberingRe.ReplaceAllString(line, ""))
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions, nil
}

var thinkTagRe = regexp.MustCompile(models.ThinkTag)

func stripThinkTags(s string) string {
	return strings.TrimSpace(thinkTagRe.ReplaceAllString(s, ""))
}
