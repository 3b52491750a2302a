package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
)

func testRules() config.RulesConfig {
	return config.RulesConfig{
		Exclude: []string{"有価証券報告書", "訂正"},
		Categories: []config.CategoryRule{
			{Category: domain.CategoryEarnings, Keywords: []string{"決算短信"}},
			{Category: domain.CategoryGuidanceRevision, Keywords: []string{"上方修正", "下方修正"}},
			{Category: domain.CategoryRegulatoryEvent, Keywords: []string{"新薬", "FDA"}},
			{Category: domain.CategoryAnnualReport, Keywords: []string{"統合報告書"}},
			{Category: domain.CategorySectorNews, Keywords: []string{"業務提携"}},
		},
	}
}

func TestClassifyCategories(t *testing.T) {
	t.Parallel()

	c := New(testRules())

	cases := []struct {
		text string
		want domain.Category
	}{
		{"2026年3月期 第1四半期決算短信〔日本基準〕", domain.CategoryEarnings},
		{"業績予想の上方修正に関するお知らせ", domain.CategoryGuidanceRevision},
		{"新薬候補の第III相試験結果について", domain.CategoryRegulatoryEvent},
		{"統合報告書2026の発行について", domain.CategoryAnnualReport},
		{"株式会社〇〇との業務提携について", domain.CategorySectorNews},
		{"自己株式の取得状況に関するお知らせ", domain.CategoryIgnore},
		{"", domain.CategoryIgnore},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.text), "text: %s", tc.text)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	c := New(testRules())
	text := "Q2 決算短信: 上方修正"

	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestExclusionDominates(t *testing.T) {
	t.Parallel()

	c := New(testRules())

	// Contains both an exclusion keyword and an earnings keyword.
	got := c.Classify("決算短信の訂正について")
	assert.Equal(t, domain.CategoryIgnore, got)
}

func TestCategoryPriorityOrder(t *testing.T) {
	t.Parallel()

	c := New(testRules())

	// Matches earnings and guidance_revision; earnings is declared first.
	got := c.Classify("Q2 決算短信: 上方修正")
	assert.Equal(t, domain.CategoryEarnings, got)
}

func TestDefaultRulesCoverOriginalKeywords(t *testing.T) {
	t.Parallel()

	c := New(config.Load().Rules)

	assert.Equal(t, domain.CategoryIgnore, c.Classify("有価証券報告書－第95期"))
	assert.Equal(t, domain.CategoryEarnings, c.Classify("中間決算短信〔IFRS〕"))
	assert.Equal(t, domain.CategoryRegulatoryEvent, c.Classify("新製品の製造販売承認取得のお知らせ"))
}
