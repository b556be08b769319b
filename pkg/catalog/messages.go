package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

// Message keys double as the English text
const (
	msgListHeading       = "# Available Skills"
	msgNoSkillsFound     = "No skills found."
	msgSkillNotFound     = "Skill '%s' not found."
	msgNoSkillsAvailable = "No skills available."
	msgNoMatches         = "No matching skills found."
	msgNoKeywordMatch    = "No skills found with keyword '%s'."
	msgMatchHeading      = "# Matching Skills for: \"%s\""
	msgRankedEntry       = "## %d. %s (score: %d.0) [%s]"
	msgMinimalEntry      = "## %s (relevance: %d.0)"
	msgBadge             = "⭐ Recommended"
	msgTierHigh          = "high"
	msgTierMedium        = "medium"
	msgTierLow           = "low"
	msgRecommendHigh     = "💡 The top-ranked skill above is the best fit for this task"
	msgRecommendMedium   = "💡 Choose the skill that best fits the task requirements"
	msgRecommendLow      = "💡 No strong match found, consider choosing a skill manually"
)

var chinese = map[string]string{
	msgListHeading:       "# 可用技能",
	msgNoSkillsFound:     "未找到任何技能。",
	msgSkillNotFound:     "未找到技能 '%s'。",
	msgNoSkillsAvailable: "没有可用的技能。",
	msgNoMatches:         "未找到匹配的技能。",
	msgNoKeywordMatch:    "未找到名称包含关键字 '%s' 的技能。",
	msgMatchHeading:      "# 匹配结果: \"%s\"",
	msgRankedEntry:       "## %d. %s (匹配度: %d.0) [%s]",
	msgMinimalEntry:      "## %s (匹配度: %d.0)",
	msgBadge:             "⭐ 推荐",
	msgTierHigh:          "高",
	msgTierMedium:        "中",
	msgTierLow:           "低",
	msgRecommendHigh:     "💡 建议使用以上技能中匹配度最高的那个",
	msgRecommendMedium:   "💡 建议根据任务需求选择合适的技能",
	msgRecommendLow:      "💡 未找到高匹配度技能，建议手动选择",
}

func init() {
	for key, text := range chinese {
		message.SetString(language.Chinese, key, text)
	}
}

// newPrinter returns a printer for the locale; unknown locales fall back to English
func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	matcher := language.NewMatcher([]language.Tag{language.English, language.Chinese})
	_, index, _ := matcher.Match(tag)
	if index == 1 {
		return message.NewPrinter(language.Chinese)
	}
	return message.NewPrinter(language.English)
}

func tierKey(c skills.Confidence) string {
	switch c {
	case skills.ConfidenceHigh:
		return msgTierHigh
	case skills.ConfidenceMedium:
		return msgTierMedium
	default:
		return msgTierLow
	}
}

func recommendationKey(c skills.Confidence) string {
	switch c {
	case skills.ConfidenceHigh:
		return msgRecommendHigh
	case skills.ConfidenceMedium:
		return msgRecommendMedium
	default:
		return msgRecommendLow
	}
}
