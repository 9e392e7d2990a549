package ports

import "context"

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type LLMService interface {
	// Complete envía el prompt de sistema y el mensaje del usuario y devuelve el texto generado.
	Complete(ctx context.Context, system, prompt string) (string, error)
}
