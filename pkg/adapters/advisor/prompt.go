package advisor

import (
	"encoding/json"
	"fmt"
)

const systemPrompt = "You are a helpful assistant for conflict resolution. " +
	"Your role is to provide initial guidance based on user's onboarding information."

// userPrompt embeds the onboarding data as compact JSON (keys sorted).
func userPrompt(data map[string]any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode onboarding data: %w", err)
	}
	return fmt.Sprintf("The user provided the following onboarding data: %s. "+
		"Based on this, suggest a concise next step or piece of advice for them to consider.", b), nil
}
