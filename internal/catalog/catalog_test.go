package catalog

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []Racket {
	t.Helper()
	rackets, err := Load(filepath.Join("testdata", "rackets.json"))
	require.NoError(t, err)
	return rackets
}

func ids(rackets []Racket) []int {
	out := make([]int, len(rackets))
	for i, r := range rackets {
		out[i] = r.ID
	}
	return out
}

func TestMatch_FiltersSortsAndLimits(t *testing.T) {
	c := New(loadFixture(t))

	picks := c.Match(Query{Level: "初学", Style: "控制型", Stiffness: "中硬", Budget: 500})
	assert.Equal(t, []int{4, 2, 5}, ids(picks))
}

func TestMatch_BudgetIsInclusive(t *testing.T) {
	c := New(loadFixture(t), WithLimit(10))

	picks := c.Match(Query{Level: "初学", Style: "控制型", Stiffness: "中硬", Budget: 480})
	assert.Equal(t, []int{4, 2, 5, 1}, ids(picks))
}

func TestMatch_NoMatch(t *testing.T) {
	c := New(loadFixture(t))

	assert.Empty(t, c.Match(Query{Level: "进阶", Style: "控制型", Stiffness: "中硬", Budget: 5000}))
	assert.Empty(t, c.Match(Query{Level: "初学", Style: "控制型", Stiffness: "中硬", Budget: 100}))
	assert.Empty(t, c.Match(Query{Level: "初学", Style: "控制型", Stiffness: "中硬", Budget: math.NaN()}))
}

func TestRecommend_FromAnswers(t *testing.T) {
	c := New(loadFixture(t))

	resp, err := c.Recommend(context.Background(), domain.Answers{
		domain.KeyLevel:     domain.TextAnswer("初学"),
		domain.KeyStyle:     domain.TextAnswer("控制型"),
		domain.KeyStiffness: domain.TextAnswer("中硬"),
		domain.KeyBudget:    domain.NumberAnswer(500),
	})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, "X4", resp.Recommendations[0].Model)
	assert.Equal(t, "x4.png", resp.Recommendations[0].ImageRef)
	assert.Contains(t, resp.Explanation, "1. Yonex X4")
	assert.Contains(t, resp.Explanation, "预算：¥500")
}

func TestRecommend_EmptyList(t *testing.T) {
	c := New(loadFixture(t))

	resp, err := c.Recommend(context.Background(), domain.Answers{
		domain.KeyLevel:     domain.TextAnswer("专业"),
		domain.KeyStyle:     domain.TextAnswer("进攻型"),
		domain.KeyStiffness: domain.TextAnswer("硬"),
		domain.KeyBudget:    domain.NumberAnswer(99999),
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Recommendations)
	assert.Empty(t, resp.Recommendations)
}

func TestQueryFromAnswers(t *testing.T) {
	full := domain.Answers{
		domain.KeyLevel:     domain.TextAnswer("初学"),
		domain.KeyStyle:     domain.TextAnswer("控制型"),
		domain.KeyStiffness: domain.TextAnswer("中硬"),
	}

	t.Run("missing budget", func(t *testing.T) {
		_, err := QueryFromAnswers(full)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("sentinel budget", func(t *testing.T) {
		a := full.Clone()
		a[domain.KeyBudget] = domain.CoerceNumber("five hundred")
		_, err := QueryFromAnswers(a)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("text budget is coerced", func(t *testing.T) {
		a := full.Clone()
		a[domain.KeyBudget] = domain.TextAnswer(" 800 ")
		q, err := QueryFromAnswers(a)
		require.NoError(t, err)
		assert.Equal(t, 800.0, q.Budget)
	})

	t.Run("missing level", func(t *testing.T) {
		a := full.Clone()
		delete(a, domain.KeyLevel)
		a[domain.KeyBudget] = domain.NumberAnswer(1)
		_, err := QueryFromAnswers(a)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})
}

func TestDefaultCatalog(t *testing.T) {
	rackets := Default()
	require.NotEmpty(t, rackets)

	seen := map[int]bool{}
	for _, r := range rackets {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
		assert.Contains(t, []string{"初学", "进阶", "专业"}, r.Level)
		assert.Contains(t, []string{"进攻型", "控制型", "全能型"}, r.Style)
		assert.Contains(t, []string{"软", "中硬", "硬"}, r.Stiffness)
	}
}

func TestParse(t *testing.T) {
	_, err := Parse([]byte("- id: 1\n  colour: red\n"), "yaml")
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Parse([]byte("[]"), "toml")
	assert.Error(t, err)

	rackets, err := Parse([]byte("- id: 9\n  brand: Yonex\n  price: 12.5\n"), "yml")
	require.NoError(t, err)
	assert.Equal(t, 12.5, rackets[0].Price)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
