package catalog

import (
	"strings"

	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

func (s *Service) formatList(loaded []*skills.Skill) string {
	if len(loaded) == 0 {
		return s.printer.Sprintf(msgNoSkillsFound)
	}

	var sb strings.Builder
	sb.WriteString(s.printer.Sprintf(msgListHeading))
	sb.WriteString("\n\n")
	for _, skill := range loaded {
		sb.WriteString("## ")
		sb.WriteString(skill.Name)
		sb.WriteString("\n")
		sb.WriteString(skill.Description)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (s *Service) formatRankedMatches(task string, matches []skills.ScoredMatch) string {
	var sb strings.Builder
	sb.WriteString(s.printer.Sprintf(msgMatchHeading, task))
	sb.WriteString("\n\n")

	for i, m := range skills.Top(matches, s.topN) {
		confidence := m.Confidence()
		sb.WriteString(s.printer.Sprintf(msgRankedEntry, i+1, m.Skill.Name, m.Score, s.printer.Sprintf(tierKey(confidence))))
		if confidence == skills.ConfidenceHigh {
			sb.WriteString(" ")
			sb.WriteString(s.printer.Sprintf(msgBadge))
		}
		sb.WriteString("\n")
		sb.WriteString(m.Skill.Description)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(s.printer.Sprintf(recommendationKey(matches[0].Confidence())))
	return sb.String()
}

func (s *Service) formatMinimalMatches(task string, matches []skills.ScoredMatch) string {
	var sb strings.Builder
	sb.WriteString(s.printer.Sprintf(msgMatchHeading, task))
	sb.WriteString("\n\n")

	for _, m := range matches {
		sb.WriteString(s.printer.Sprintf(msgMinimalEntry, m.Skill.Name, m.Score))
		sb.WriteString("\n")
		sb.WriteString(m.Skill.Description)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
