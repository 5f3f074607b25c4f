// Package geo resolve endereço legível a partir de coordenadas, em melhor
// esforço. O enriquecimento é consultivo: falha vira a string de coordenadas
// cruas e a submissão nunca é bloqueada.
package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client consulta um serviço compatível com Nominatim.
type Client struct {
	http *resty.Client
}

// New cria o cliente de geocodificação reversa.
func New(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ouvidoria-municipal/1.0")

	return &Client{http: httpClient}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse devolve endereço legível ou, em falha, as coordenadas cruas.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%.5f, %.5f", lat, lng)
	if c == nil {
		return fallback
	}

	var parsed reverseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "jsonv2",
			"lat":    fmt.Sprintf("%f", lat),
			"lon":    fmt.Sprintf("%f", lng),
		}).
		SetResult(&parsed).
		Get("/reverse")
	if err != nil {
		log.Debug().Err(err).Msg("geocodificação reversa indisponível")
		return fallback
	}
	if !resp.IsSuccess() || parsed.DisplayName == "" {
		return fallback
	}

	return parsed.DisplayName
}
