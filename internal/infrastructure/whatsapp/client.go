package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// ErrMissingCredentials indica que falta el token o el identificador del
// emisor. Se evalúa por intento de envío: la falla es del despacho, nunca
// del flujo que lo disparó.
var ErrMissingCredentials = errors.New("whatsapp: faltan WHATSAPP_ACCESS_TOKEN o WHATSAPP_PHONE_ID")

// ProviderError es una respuesta no-2xx del proveedor con su payload de
// error para diagnóstico y reintento manual
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("whatsapp: el proveedor respondió %d: %s", e.StatusCode, e.Body)
}

// Client habla con la API de mensajes de plantilla de WhatsApp Cloud
type Client struct {
	baseURL    string
	token      string
	phoneID    string
	httpClient *http.Client
}

// NewClientFromEnv arma el cliente con las credenciales del ambiente. Las
// credenciales pueden faltar al construir: el error se levanta por envío.
func NewClientFromEnv() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		phoneID: os.Getenv("WHATSAPP_PHONE_ID"),
		httpClient: &http.Client{
			// Una llamada colgada no debe ocupar un worker de despacho
			// indefinidamente
			Timeout: 10 * time.Second,
		},
	}
}

// NewClient arma un cliente con credenciales y URL explícitas (tests)
func NewClient(baseURL, token, phoneID string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		phoneID:    phoneID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type templatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string          `json:"type"`
	Parameters []templateParam `json:"parameters"`
}

type templateParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTemplate envía una plantilla con parámetros posicionales de texto al
// número indicado (ya normalizado). Una respuesta no-2xx regresa
// *ProviderError con el cuerpo del proveedor.
func (c *Client) SendTemplate(ctx context.Context, phone, template, languageCode string, params []string) error {
	if c.token == "" || c.phoneID == "" {
		return ErrMissingCredentials
	}

	parameters := make([]templateParam, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, templateParam{Type: "text", Text: p})
	}

	payload := templatePayload{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "template",
		Template: templateBody{
			Name:     template,
			Language: templateLanguage{Code: languageCode},
			Components: []templateComponent{
				{Type: "body", Parameters: parameters},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: error serializando payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: error creando request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: error de red hacia el proveedor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}
