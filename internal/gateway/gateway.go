package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/preprocess"
)

// Request asks the hosted model for one review of a preprocessed film.
type Request struct {
	Image *preprocess.NormalizedImage
	Mode  Mode
	// Region selects the anatomy prompt; ignored by other modes.
	Region string
	// ClinicalHistory feeds the report prompt; ignored by other modes.
	ClinicalHistory string
}

// Client wraps the hosted multimodal model behind per-mode prompt
// templates. The HTTP client is injected by the host application and owned
// by it; the gateway keeps no cached state of its own.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewClient(httpClient *http.Client, endpoint, apiKey, model string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// Wire types for the generateContent call.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the film with the mode's prompt and returns the model's
// text verbatim. The response is never interpreted here; rendering and
// judgment stay with the caller.
func (c *Client) Analyze(ctx context.Context, req Request) (string, error) {
	prompt, temperature, maxTokens, err := buildPrompt(req.Mode, req.Region, req.ClinicalHistory)
	if err != nil {
		return "", apperrors.NewValidationError("unsupported analysis mode", err).
			WithDetails("mode=%s", req.Mode)
	}

	encoded, err := req.Image.EncodePNG()
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode image for analysis", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MIMEType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(encoded),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to build analysis request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.endpoint, c.model, c.apiKey)

	respBody, err := c.post(ctx, url, body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.NewNetworkError("unreadable model response", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", apperrors.NewNetworkError("model returned no candidates", nil)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// post performs the HTTP call with up to three attempts. Only transport
// errors and 5xx responses are retried; 4xx responses fail immediately.
func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("analysis canceled", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build analysis request", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperrors.NewTimeoutError("analysis timed out", err)
			}
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return respBody, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, apperrors.NewNetworkError("model rejected the request", nil).
				WithDetails("status=%d body=%s", resp.StatusCode, truncate(respBody, 256))
		default:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			if readErr != nil {
				lastErr = readErr
			}
		}
	}

	return nil, apperrors.NewNetworkError("model analysis failed after 3 attempts", lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
