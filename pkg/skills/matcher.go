package skills

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	nameMatchScore        = 2
	descriptionMatchScore = 1
	minTokenLength        = 2

	// DefaultTopN is the number of matches shown by the ranked view
	DefaultTopN = 3
)

// Confidence is a coarse classification of a relevance score
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFor classifies a relevance score: 5 and above is high,
// 2 to 4 is medium, anything lower is low
func ConfidenceFor(score int) Confidence {
	switch {
	case score >= 5:
		return ConfidenceHigh
	case score >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ScoredMatch pairs a skill with its relevance score for one task
type ScoredMatch struct {
	Skill *Skill
	Score int
}

// Confidence returns the confidence tier of the match score
func (m ScoredMatch) Confidence() Confidence {
	return ConfidenceFor(m.Score)
}

// Tokenize lower-cases the task and splits it on whitespace into a set of
// tokens, kept in first-seen order
func Tokenize(task string) []string {
	fields := strings.Fields(strings.ToLower(task))

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// Score computes the relevance of a skill for the given tokens. Each token of
// at least two characters adds 2 when it occurs in the lower-cased name and 1
// when it occurs in the lower-cased description.
func Score(tokens []string, skill *Skill) int {
	name := strings.ToLower(skill.Name)
	description := strings.ToLower(skill.Description)

	score := 0
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < minTokenLength {
			continue
		}
		if strings.Contains(name, token) {
			score += nameMatchScore
		}
		if strings.Contains(description, token) {
			score += descriptionMatchScore
		}
	}
	return score
}

// Match scores every skill against the task, drops zero scores and orders the
// rest by descending score. Equal scores keep their input order.
func Match(task string, skills []*Skill) []ScoredMatch {
	tokens := Tokenize(task)

	matches := make([]ScoredMatch, 0, len(skills))
	for _, skill := range skills {
		if score := Score(tokens, skill); score > 0 {
			matches = append(matches, ScoredMatch{Skill: skill, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Top returns at most n leading matches without reordering them.
// A non-positive n returns every match.
func Top(matches []ScoredMatch, n int) []ScoredMatch {
	if n <= 0 || len(matches) <= n {
		return matches
	}
	return matches[:n]
}

// FindByKeyword returns the first skill, in load order, whose lower-cased
// name contains the lower-cased keyword
func FindByKeyword(keyword string, skills []*Skill) (*Skill, bool) {
	needle := strings.ToLower(keyword)
	for _, skill := range skills {
		if strings.Contains(strings.ToLower(skill.Name), needle) {
			return skill, true
		}
	}
	return nil, false
}

// FindByName returns the first skill, in load order, whose name equals name
// case-insensitively
func FindByName(name string, skills []*Skill) (*Skill, bool) {
	want := strings.ToLower(name)
	for _, skill := range skills {
		if strings.ToLower(skill.Name) == want {
			return skill, true
		}
	}
	return nil, false
}
