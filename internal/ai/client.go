// Package ai chama o colaborador de classificação (Gemini) na criação do
// relatório. Qualquer falha — rede, quota, resposta malformada — vira o
// fallback fixo; a submissão do cidadão nunca é bloqueada por este caminho.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/report"
)

// Client encapsula a chamada generateContent com schema JSON de resposta.
// Nulo ou sem chave de API, o cliente fica desabilitado e Analyze devolve o
// fallback direto.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

// New cria o cliente. O timeout limita a espera pela classificação; estourado
// o prazo, vale o fallback.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, apiKey: apiKey, model: model}
}

// Fallback é a anotação fixa usada quando a classificação não responde.
func Fallback(category string) report.AIAnalysis {
	return report.AIAnalysis{
		Summary:  "Analysis unavailable",
		Urgency:  report.UrgencyMedium,
		Category: category,
		IsClear:  true,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"summary":  map[string]any{"type": "STRING"},
		"urgency":  map[string]any{"type": "STRING", "enum": []string{report.UrgencyLow, report.UrgencyMedium, report.UrgencyHigh}},
		"category": map[string]any{"type": "STRING"},
		"isClear":  map[string]any{"type": "BOOLEAN"},
	},
	"required": []string{"summary", "urgency", "category", "isClear"},
}

// Analyze classifica a solicitação. Nunca retorna erro: toda falha vira o
// fallback com a categoria ecoando o serviço solicitado.
func (c *Client) Analyze(ctx context.Context, description, serviceName string) report.AIAnalysis {
	if c == nil {
		return Fallback(serviceName)
	}

	prompt := fmt.Sprintf(`Analise a seguinte solicitação de um cidadão para a prefeitura.
Serviço Selecionado: %s
Descrição do Cidadão: %q

Retorne um JSON classificando essa demanda.`, serviceName, description)

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}

	var parsed generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post("/v1beta/models/" + c.model + ":generateContent")
	if err != nil {
		log.Warn().Err(err).Msg("classificação por IA indisponível, usando fallback")
		return Fallback(serviceName)
	}
	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.StatusCode()).Msg("classificação por IA recusada, usando fallback")
		return Fallback(serviceName)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("classificação por IA sem candidatos, usando fallback")
		return Fallback(serviceName)
	}

	var analysis struct {
		Summary  string `json:"summary"`
		Urgency  string `json:"urgency"`
		Category string `json:"category"`
		IsClear  bool   `json:"isClear"`
	}
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &analysis); err != nil {
		log.Warn().Err(err).Msg("resposta da IA malformada, usando fallback")
		return Fallback(serviceName)
	}

	switch analysis.Urgency {
	case report.UrgencyLow, report.UrgencyMedium, report.UrgencyHigh:
	default:
		analysis.Urgency = report.UrgencyMedium
	}

	return report.AIAnalysis{
		Summary:  analysis.Summary,
		Urgency:  analysis.Urgency,
		Category: analysis.Category,
		IsClear:  analysis.IsClear,
	}
}
