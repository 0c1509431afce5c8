package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"datui/model"
)

// ImageClient generates images via the OpenAI Images API. It satisfies
// records.ImageGenerator so the structured-record engine can expose a
// generate_image tool when an API key is configured.
type ImageClient struct {
	client openai.Client
	model  openai.ImageModel
}

// NewImageClient creates an image generation client. model defaults to
// DALL-E 3.
func NewImageClient(baseURL, apiKey, modelName string) (*ImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image generation requires an OpenAI API key")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	imageModel := openai.ImageModelDallE3
	if modelName != "" {
		imageModel = openai.ImageModel(modelName)
	}

	return &ImageClient{
		client: openai.NewClient(opts...),
		model:  imageModel,
	}, nil
}

// Generate produces one image for the prompt and returns it as an
// in-memory PNG attachment.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (model.ImageAttachment, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          c.model,
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return model.ImageAttachment{}, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return model.ImageAttachment{}, fmt.Errorf("image generation returned no data")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return model.ImageAttachment{}, fmt.Errorf("failed to decode generated image: %w", err)
	}

	return model.ImageAttachment{
		MIME: "image/png",
		Data: raw,
	}, nil
}
