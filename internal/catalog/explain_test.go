package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleQuery = Query{Level: "初学", Style: "控制型", Stiffness: "中硬", Budget: 500}

func TestTemplateExplainer(t *testing.T) {
	e := NewTemplateExplainer()

	text, err := e.Explain(context.Background(), sampleQuery, []Racket{
		{Brand: "Yonex", Model: "X1", Level: "初学", Style: "控制型", Stiffness: "中硬", Price: 480},
		{Brand: "Victor", Model: "V2", Level: "初学", Style: "控制型", Stiffness: "中硬", Price: 320.5},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "1. Yonex X1：中硬拍框，价格 ¥480")
	assert.Contains(t, text, "2. Victor V2")
	assert.Contains(t, text, "¥320.50")

	text, err = e.Explain(context.Background(), sampleQuery, nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTemplateExplainer_Custom(t *testing.T) {
	tmpl, err := ParseTemplate(`{{len .Picks}} picks under {{price .Query.Budget}}`)
	require.NoError(t, err)

	text, err := NewTemplateExplainerFrom(tmpl).Explain(context.Background(), sampleQuery, []Racket{{}})
	require.NoError(t, err)
	assert.Equal(t, "1 picks under 500", text)
}

func chatServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(raw, &req); err == nil && len(req.Messages) > 0 && gotPrompt != nil {
			*gotPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const completion = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  1. Yonex X1 适合初学控制型球友。 "}}],
"usage":{"prompt_tokens":10,"completion_tokens":10,"total_tokens":20}}`

func TestOpenAIExplainer_Success(t *testing.T) {
	var prompt string
	srv := chatServer(t, http.StatusOK, completion, &prompt)
	e := NewOpenAIExplainer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1/"}, nil)

	text, err := e.Explain(context.Background(), sampleQuery, []Racket{{ID: 1, Brand: "Yonex", Model: "X1"}})
	require.NoError(t, err)
	assert.Equal(t, "1. Yonex X1 适合初学控制型球友。", text)
	assert.Contains(t, prompt, "预算上限：¥500")
	assert.Contains(t, prompt, `"brand":"Yonex"`)
}

func TestOpenAIExplainer_QuotaExhausted(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`, nil)
	e := NewOpenAIExplainer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1/"}, nil)

	text, err := e.Explain(context.Background(), sampleQuery, nil)
	require.NoError(t, err)
	assert.Equal(t, QuotaExhaustedExplanation, text)
}

func TestOpenAIExplainer_ServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil)
	e := NewOpenAIExplainer(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1/"}, nil)

	text, err := e.Explain(context.Background(), sampleQuery, nil)
	require.NoError(t, err)
	assert.Equal(t, UnavailableExplanation, text)
}

func TestCatalog_UsesExplainer(t *testing.T) {
	srv := chatServer(t, http.StatusOK, completion, nil)
	c := New(loadFixture(t), WithExplainer(NewOpenAIExplainer(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1/"}, nil)))

	resp, err := c.Answer(context.Background(), sampleQuery)
	require.NoError(t, err)
	assert.Equal(t, "1. Yonex X1 适合初学控制型球友。", resp.Explanation)
}
