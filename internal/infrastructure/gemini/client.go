package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *zap.Logger
}

func NewGeminiClient(apiKey string, log *zap.Logger) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.7)

	return &GeminiClient{
		client: client,
		model:  model,
		log:    log.Named("gemini"),
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// GenerateBio suggests a one or two sentence profile description.
func (c *GeminiClient) GenerateBio(ctx context.Context, fullName, location string, platforms []string) (string, error) {
	prompt := fmt.Sprintf(`
		Write a short professional bio for a digital business card.
		Name: %s
		Location: %s
		Present on: %s

		Task: 1-2 friendly sentences in first person, no hashtags, no emoji.
		Output: Just the bio text.
	`, fullName, location, strings.Join(platforms, ", "))

	text, err := c.generate(ctx, prompt)
	if err != nil || text == "" {
		c.log.Warn("gemini unavailable, using fallback bio", zap.Error(err))
		return FallbackBio(fullName, location), nil
	}
	return text, nil
}

// GenerateFollowUpMessage drafts the body of a follow-up reminder.
func (c *GeminiClient) GenerateFollowUpMessage(ctx context.Context, name, eventName, description string) (string, error) {
	prompt := fmt.Sprintf(`
		You help people keep in touch with contacts they met in person.
		Contact: %s
		Met at: %s
		About them: %s

		Task: one short sentence nudging the user to reach out, mentioning the event if known.
		Output: Just the sentence.
	`, name, eventName, description)

	text, err := c.generate(ctx, prompt)
	if err != nil || text == "" {
		c.log.Warn("gemini unavailable, using fallback follow-up", zap.Error(err))
		return FallbackFollowUp(name, eventName), nil
	}
	return text, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// FallbackBio is used when no model is configured or the API fails.
func FallbackBio(fullName, location string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return "Happy to connect!"
	}
	if loc := strings.TrimSpace(location); loc != "" {
		return fmt.Sprintf("Hi, I'm %s from %s. Happy to connect!", name, loc)
	}
	return fmt.Sprintf("Hi, I'm %s. Happy to connect!", name)
}

func FallbackFollowUp(name, eventName string) string {
	if strings.TrimSpace(eventName) != "" {
		return fmt.Sprintf("You met %s at %s. Reach out and keep the conversation going.", name, eventName)
	}
	return fmt.Sprintf("You recently connected with %s. Reach out and keep the conversation going.", name)
}
