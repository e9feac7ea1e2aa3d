package guidanceapi

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

// RawSpec returns the embedded OpenAPI document.
func RawSpec() []byte {
	return rawSpec
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// onboardingSchema returns the schema of the onboarding_data object.
func onboardingSchema(doc *openapi3.T) (*openapi3.Schema, error) {
	ref, ok := doc.Components.Schemas["OnboardingData"]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("openapi document has no OnboardingData schema")
	}
	return ref.Value, nil
}
