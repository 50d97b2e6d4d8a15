package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
	"gopkg.in/yaml.v3"
)

//go:embed rackets.yaml
var defaultCatalog []byte

// DefaultLimit is the number of picks returned per query.
const DefaultLimit = 3

// ErrInvalidQuery is returned when the answers lack a field or the budget is not a number.
var ErrInvalidQuery = errors.New("invalid recommendation query")

// Racket is one catalogue entry.
type Racket struct {
	ID        int     `json:"id" yaml:"id"`
	Brand     string  `json:"brand" yaml:"brand"`
	Model     string  `json:"model" yaml:"model"`
	Level     string  `json:"level" yaml:"level"`
	Style     string  `json:"style" yaml:"style"`
	Stiffness string  `json:"stiffness" yaml:"stiffness"`
	Price     float64 `json:"price" yaml:"price"`
	ImageRef  string  `json:"imageRef" yaml:"imageRef"`
}

// Item converts the entry into the wire representation.
func (r Racket) Item() domain.RecommendationItem {
	return domain.RecommendationItem{
		ID:        domain.ItemID(strconv.Itoa(r.ID)),
		Brand:     r.Brand,
		Model:     r.Model,
		Level:     r.Level,
		Style:     r.Style,
		Stiffness: r.Stiffness,
		Price:     r.Price,
		ImageRef:  r.ImageRef,
	}
}

// Query is a validated recommendation request.
type Query struct {
	Level     string  `json:"level"`
	Style     string  `json:"style"`
	Stiffness string  `json:"stiffness"`
	Budget    float64 `json:"budget"`
}

// QueryFromAnswers extracts a Query from collected answers.
func QueryFromAnswers(answers domain.Answers) (Query, error) {
	var q Query
	for key, dst := range map[string]*string{
		domain.KeyLevel:     &q.Level,
		domain.KeyStyle:     &q.Style,
		domain.KeyStiffness: &q.Stiffness,
	} {
		a, ok := answers[key]
		if !ok {
			return q, fmt.Errorf("%w: missing %s", ErrInvalidQuery, key)
		}
		*dst = a.String()
	}

	b, ok := answers[domain.KeyBudget]
	if !ok {
		return q, fmt.Errorf("%w: missing %s", ErrInvalidQuery, domain.KeyBudget)
	}
	if !b.Numeric {
		b = domain.CoerceNumber(b.Text)
	}
	if !b.Valid() {
		return q, fmt.Errorf("%w: %s is not a number", ErrInvalidQuery, domain.KeyBudget)
	}
	q.Budget = b.Number
	return q, nil
}

// Load reads a catalogue file. Files ending in .json are decoded as JSON, anything else as YAML.
func Load(path string) ([]Racket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes a catalogue in the given format ("json" or "yaml").
func Parse(data []byte, format string) ([]Racket, error) {
	var rackets []Racket
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rackets); err != nil {
			return nil, fmt.Errorf("failed to decode catalogue json: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rackets); err != nil {
			return nil, fmt.Errorf("failed to decode catalogue yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalogue format %q", format)
	}
	return rackets, nil
}

// Default returns the embedded sample catalogue.
func Default() []Racket {
	rackets, err := Parse(defaultCatalog, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded catalogue is invalid: %v", err))
	}
	return rackets
}

// Catalog answers recommendation queries from an in-memory racket list.
type Catalog struct {
	rackets   []Racket
	explainer Explainer
	limit     int
	logger    *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithExplainer replaces the template explainer.
func WithExplainer(e Explainer) Option {
	return func(c *Catalog) {
		c.explainer = e
	}
}

// WithLimit sets how many picks are returned.
func WithLimit(n int) Option {
	return func(c *Catalog) {
		c.limit = n
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

var _ ports.Recommender = (*Catalog)(nil)

// New creates a Catalog over rackets.
func New(rackets []Racket, opts ...Option) *Catalog {
	c := &Catalog{
		rackets:   append([]Racket(nil), rackets...),
		explainer: NewTemplateExplainer(),
		limit:     DefaultLimit,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rackets returns a copy of the catalogue.
func (c *Catalog) Rackets() []Racket {
	return append([]Racket(nil), c.rackets...)
}

// Match filters by exact level, style and stiffness and price within budget,
// then returns the cheapest picks in ascending price order.
func (c *Catalog) Match(q Query) []Racket {
	var picks []Racket
	for _, r := range c.rackets {
		if r.Level != q.Level || r.Style != q.Style || r.Stiffness != q.Stiffness {
			continue
		}
		if math.IsNaN(q.Budget) || r.Price > q.Budget {
			continue
		}
		picks = append(picks, r)
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Price < picks[j].Price
	})
	if c.limit > 0 && len(picks) > c.limit {
		picks = picks[:c.limit]
	}
	return picks
}

// Answer runs a query and builds the full response, explanation included.
func (c *Catalog) Answer(ctx context.Context, q Query) (*domain.RecommendResponse, error) {
	picks := c.Match(q)
	explanation, err := c.explainer.Explain(ctx, q, picks)
	if err != nil {
		return nil, fmt.Errorf("failed to explain recommendations: %w", err)
	}

	items := make([]domain.RecommendationItem, 0, len(picks))
	for _, p := range picks {
		items = append(items, p.Item())
	}
	c.logger.Debug("catalogue query",
		"level", q.Level,
		"style", q.Style,
		"stiffness", q.Stiffness,
		"budget", q.Budget,
		"matches", len(items),
	)
	return &domain.RecommendResponse{Recommendations: items, Explanation: explanation}, nil
}

// Recommend implements ports.Recommender for in-process use.
func (c *Catalog) Recommend(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error) {
	q, err := QueryFromAnswers(answers)
	if err != nil {
		return nil, err
	}
	return c.Answer(ctx, q)
}
