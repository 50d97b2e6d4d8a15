package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/aretw0/racketbot/internal/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Explainer writes the explanation text that accompanies the picks.
type Explainer interface {
	Explain(ctx context.Context, q Query, picks []Racket) (string, error)
}

const defaultExplanation = `根据你的需求（水平：{{.Query.Level}}，打法：{{.Query.Style}}，硬度：{{.Query.Stiffness}}，预算：¥{{price .Query.Budget}}），推荐如下：
{{range $i, $r := .Picks}}{{inc $i}}. {{$r.Brand}} {{$r.Model}}：{{$r.Stiffness}}拍框，价格 ¥{{price $r.Price}}，适合{{$r.Level}}{{$r.Style}}球友。
{{end}}`

// TemplateExplainer renders a text/template over the query and picks.
type TemplateExplainer struct {
	tmpl *template.Template
}

// NewTemplateExplainer builds the stock explainer.
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{tmpl: template.Must(ParseTemplate(defaultExplanation))}
}

// ParseTemplate parses a custom explanation template.
// The template sees .Query and .Picks and may call price and inc.
func ParseTemplate(text string) (*template.Template, error) {
	return template.New("explanation").Funcs(template.FuncMap{
		"price": formatPrice,
		"inc":   func(i int) int { return i + 1 },
	}).Parse(text)
}

// NewTemplateExplainerFrom wraps an already parsed template.
func NewTemplateExplainerFrom(tmpl *template.Template) *TemplateExplainer {
	return &TemplateExplainer{tmpl: tmpl}
}

func (e *TemplateExplainer) Explain(ctx context.Context, q Query, picks []Racket) (string, error) {
	if len(picks) == 0 {
		return "", nil
	}
	var b strings.Builder
	err := e.tmpl.Execute(&b, struct {
		Query Query
		Picks []Racket
	}{q, picks})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

// Fallback texts used when the language model cannot be reached.
const (
	QuotaExhaustedExplanation = "⚠️ OpenAI 配额已用尽，请前往控制台查看并充值后重试。"
	UnavailableExplanation    = "⚠️ 暂时无法生成推荐说明，请稍后再试。"
)

// DefaultModel is the chat model used by OpenAIExplainer.
const DefaultModel = "gpt-3.5-turbo"

// OpenAIConfig configures OpenAIExplainer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIExplainer asks a chat model to describe the picks.
// Model failures never fail the request: the explanation degrades to a fixed notice.
type OpenAIExplainer struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIExplainer creates an explainer backed by the OpenAI chat API.
func NewOpenAIExplainer(cfg OpenAIConfig, logger *slog.Logger) *OpenAIExplainer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OpenAIExplainer{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (e *OpenAIExplainer) Explain(ctx context.Context, q Query, picks []Racket) (string, error) {
	prompt, err := explainPrompt(q, picks)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       e.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
			e.logger.WarnContext(ctx, "explanation model quota exhausted", "err", err)
			return QuotaExhaustedExplanation, nil
		}
		e.logger.ErrorContext(ctx, "explanation model call failed", "err", err)
		return UnavailableExplanation, nil
	}
	if len(resp.Choices) == 0 {
		e.logger.ErrorContext(ctx, "explanation model returned no choices")
		return UnavailableExplanation, nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func explainPrompt(q Query, picks []Racket) (string, error) {
	list, err := json.Marshal(picks)
	if err != nil {
		return "", err
	}
	if picks == nil {
		list = []byte("[]")
	}
	return fmt.Sprintf(`你是羽毛球拍专家。根据用户需求和已筛选出的拍子列表，生成一段中文推荐说明，内容需包括：
1. 每支拍子的亮点与适用人群；
2. 为什么符合用户的需求（水平/打法/硬度/预算）；
3. 如有必要，给出保养或购买建议。

用户需求：
- 水平：%s
- 打法：%s
- 拍框硬度：%s
- 预算上限：¥%s

已筛选列表（JSON）：
%s

请按序号分点描述，条理清晰，语气专业但通俗易懂。`, q.Level, q.Style, q.Stiffness, formatPrice(q.Budget), list), nil
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
