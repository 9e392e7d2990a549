package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jhoicas/negocio-erp/internal/application/ports"
)

// Verificar en tiempo de compilación que AnthropicService implementa LLMService.
var _ ports.LLMService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicService adaptador de LLMService sobre la API REST de Anthropic (Messages).
type AnthropicService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador.
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &AnthropicService{
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicMessagesURL,
		httpClient: newHTTPClient(),
	}
}

// WithBaseURL cambia el endpoint (proxies, pruebas).
func (s *AnthropicService) WithBaseURL(url string) *AnthropicService {
	s.baseURL = url
	return s
}

// ── Protocolo Messages API ────────────────────────────────────────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete envía el mensaje y devuelve el texto del primer bloque de la respuesta.
func (s *AnthropicService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": anthropicVersion,
	}
	raw, status, err := postJSON(ctx, s.httpClient, s.baseURL, headers, payload)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if status != http.StatusOK {
		if jsonErr := json.Unmarshal(raw, &resp); jsonErr == nil && resp.Error != nil {
			return "", fmt.Errorf("AI: Anthropic error (%s): %s", resp.Error.Type, resp.Error.Message)
		}
		return "", fmt.Errorf("AI: Anthropic HTTP %d: %s", status, string(raw))
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}
	return resp.Content[0].Text, nil
}
