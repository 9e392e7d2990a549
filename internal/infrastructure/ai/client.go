// Package ai contiene los adaptadores HTTP de los proveedores LLM.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/negocio-erp/internal/application/ports"
)

const maxResponseBytes = 64 * 1024

// New devuelve el adaptador del proveedor configurado ("anthropic" o "gemini").
func New(provider, anthropicKey, geminiKey, model string) (ports.LLMService, error) {
	switch provider {
	case "anthropic", "":
		return NewAnthropicService(anthropicKey, model), nil
	case "gemini":
		return NewGeminiService(geminiKey, model), nil
	}
	return nil, fmt.Errorf("AI: proveedor desconocido %q", provider)
}

func newHTTPClient() *http.Client {
	// El use case impone además un context.WithTimeout de 10 s.
	return &http.Client{Timeout: 25 * time.Second}
}

// postJSON serializa payload, hace el POST y devuelve el cuerpo (limitado) y el status.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("AI: leer respuesta: %w", err)
	}
	return raw, resp.StatusCode, nil
}
