package handlers

import (
	"context"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/gate"
	"github.com/gesturequiz/gesturequiz/internal/genai"
	"github.com/gesturequiz/gesturequiz/internal/httperr"
)

const (
	maxMessageLength = 4000
	maxPromptLength  = 1000
	minPromptLength  = 10
)

var (
	allowedChatModels = map[string]bool{
		"gpt-4o-mini":   true,
		"gpt-4":         true,
		"gpt-3.5-turbo": true,
	}
	allowedImageModels = map[string]bool{
		"dall-e-2": true,
		"dall-e-3": true,
	}
	allowedImageSizes = map[string]bool{
		"256x256":   true,
		"512x512":   true,
		"1024x1024": true,
		"1792x1024": true,
		"1024x1792": true,
	}
	allowedRoles = map[string]bool{
		"system":    true,
		"user":      true,
		"assistant": true,
	}
)

// Generator is the upstream surface the OpenAI endpoints need.
type Generator interface {
	ChatCompletion(ctx context.Context, req genai.ChatRequest) (*genai.Upstream, error)
	GenerateImages(ctx context.Context, req genai.ImageRequest) (*genai.Upstream, error)
}

// GenAI serves the chat and image-generation proxy endpoints.
type GenAI struct {
	client Generator
	logger *zap.Logger
}

// NewGenAI returns the generation proxy handlers.
func NewGenAI(client Generator, logger *zap.Logger) *GenAI {
	return &GenAI{client: client, logger: logger}
}

type chatMessagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []chatMessagePayload `json:"messages"`
	Temperature *float64             `json:"temperature"`
	MaxTokens   *int                 `json:"max_tokens"`
}

// Chat validates and forwards a chat completion, relaying the upstream
// status and body verbatim.
func (h *GenAI) Chat(w http.ResponseWriter, r *http.Request) error {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if !allowedChatModels[req.Model] {
		return httperr.InvalidInput("Invalid model specified")
	}
	if len(req.Messages) == 0 {
		return httperr.InvalidInput("Messages must be a non-empty array")
	}

	upstream := genai.ChatRequest{Model: req.Model}
	for _, msg := range req.Messages {
		role := msg.Role
		if !allowedRoles[role] {
			role = "user"
		}
		upstream.Messages = append(upstream.Messages, genai.ChatMessage{
			Role:    role,
			Content: gate.Sanitize(msg.Content, maxMessageLength),
		})
	}
	if req.Temperature != nil && *req.Temperature >= 0 && *req.Temperature <= 2 {
		upstream.Temperature = req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 && *req.MaxTokens <= 4000 {
		upstream.MaxTokens = req.MaxTokens
	}

	resp, err := h.client.ChatCompletion(r.Context(), upstream)
	if err != nil {
		return mapUpstreamErr(err, "Service temporarily unavailable")
	}
	return relay(w, resp)
}

type imageRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

// GenerateImage validates and forwards an image generation. Out-of-range
// optional fields fall back to defaults instead of failing.
func (h *GenAI) GenerateImage(w http.ResponseWriter, r *http.Request) error {
	var req imageRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	prompt := gate.Sanitize(req.Prompt, maxPromptLength)
	if utf8.RuneCountInString(prompt) < minPromptLength {
		return httperr.InvalidInput("Prompt too short or invalid")
	}

	upstream := genai.ImageRequest{
		Prompt:  prompt,
		Model:   req.Model,
		Size:    req.Size,
		Quality: req.Quality,
		N:       req.N,
	}
	if !allowedImageModels[upstream.Model] {
		upstream.Model = "dall-e-3"
	}
	if !allowedImageSizes[upstream.Size] {
		upstream.Size = "1024x1024"
	}
	if upstream.Quality != "standard" && upstream.Quality != "hd" {
		upstream.Quality = "standard"
	}
	if upstream.N < 1 || upstream.N > 4 {
		upstream.N = 1
	}

	resp, err := h.client.GenerateImages(r.Context(), upstream)
	if err != nil {
		return mapUpstreamErr(err, "Image generation service temporarily unavailable")
	}
	return relay(w, resp)
}

// relay writes an upstream response through unchanged.
func relay(w http.ResponseWriter, up *genai.Upstream) error {
	w.Header().Set("Content-Type", up.ContentType)
	w.WriteHeader(up.StatusCode)
	_, err := w.Write(up.Body)
	return err
}
