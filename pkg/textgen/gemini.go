package textgen

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// geminiClient implements Client using the official Gemini SDK.
type geminiClient struct {
	client *genai.Client
}

// NewGemini creates a Client backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (Client, error) {
	o := applyOptions(opts)

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cc.HTTPOptions.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cc.HTTPClient = o.httpClient
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "textgen: create gemini client")
	}

	return &geminiClient{client: client}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{}
	if req.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	config.MaxOutputTokens = int32(maxTokens)

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, eris.Wrap(err, "textgen: gemini generate")
	}

	out := &Response{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}
