package memory

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// knownLanguages maps lowercased language names to their canonical form.
var knownLanguages = map[string]string{
	"python":     "Python",
	"rust":       "Rust",
	"go":         "Go",
	"golang":     "Go",
	"zig":        "Zig",
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"java":       "Java",
	"ruby":       "Ruby",
	"swift":      "Swift",
	"kotlin":     "Kotlin",
	"haskell":    "Haskell",
	"elixir":     "Elixir",
	"c":          "C",
	"c++":        "C++",
}

// entityStopList excludes common sentence starters from entity tracking.
var entityStopList = map[string]bool{
	"I": true, "The": true, "A": true, "An": true, "This": true,
	"That": true, "It": true, "We": true, "You": true, "My": true,
	"He": true, "She": true, "They": true, "What": true, "When": true,
	"Where": true, "Why": true, "How": true, "Let": true, "Please": true,
	"Yes": true, "No": true, "And": true, "But": true, "Also": true,
}

var (
	// "building NexusFlow in Rust", "working on Atlas using Go". The name
	// capture stays case-sensitive: only capitalized words qualify.
	projectPattern = regexp.MustCompile(
		`\b(?i:building|working on|developing|creating)\s+([A-Z][A-Za-z0-9_-]*)(?:\s+(?i:in|using|with)\s+([A-Za-z+]+))?`)

	// "prefer Rust", "switching to Zig", "let's use Python"
	languagePrefPattern = regexp.MustCompile(
		`(?i)\b(?:prefer|switch(?:ing)? to|let'?s use)\s+([A-Za-z+]+)`)

	// "I want to ship this by Friday", "my goal is a stable release"
	goalPattern = regexp.MustCompile(
		`(?i)\b(?:i want to|my goal is|i need to|i'?m trying to)\s+([^.!?\n]+)`)

	// "use Zig", "try Python", "with Go"
	languageSwitchPattern = regexp.MustCompile(
		`(?i)\b(?:use|try|with|switch(?:ing)? to)\s+([A-Za-z+]+)`)

	capitalizedToken = regexp.MustCompile(`^[A-Z][A-Za-z0-9_-]*$`)
)

const (
	goalMinLen     = 5
	goalMaxLen     = 200
	prefLanguage   = "language"
	noRulePrefix   = "no_"
	recentGoalsMax = 3
)

// UserProfile tracks projects, preferences, goals, and named entities
// extracted from raw user text, and detects contradictions against
// previously stated preferences and rules.
type UserProfile struct {
	mu          sync.RWMutex
	projects    map[string]*Project
	preferences map[string]*Preference
	goals       []string
	entities    map[string]*Entity
	turns       int
}

// NewUserProfile creates an empty profile.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		projects:    make(map[string]*Project),
		preferences: make(map[string]*Preference),
		entities:    make(map[string]*Entity),
	}
}

// ExtractFromMessage advances the profile turn counter and runs the
// independent extractors over one user message.
func (p *UserProfile) ExtractFromMessage(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.turns++
	p.extractProjects(text)
	p.extractLanguagePreference(text)
	p.extractGoals(text)
	p.extractEntities(text)
}

func (p *UserProfile) extractProjects(text string) {
	for _, match := range projectPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if entityStopList[name] {
			continue
		}
		language := canonicalLanguage(match[2])

		project, exists := p.projects[name]
		if !exists {
			p.projects[name] = &Project{
				Name:           name,
				Language:       language,
				FirstMentioned: p.turns,
				LastMentioned:  p.turns,
			}
			if language != "" {
				p.setPreferenceLocked(prefLanguage, language, 0.8, "project "+name)
			}
			continue
		}

		project.LastMentioned = p.turns
		if language != "" && language != project.Language {
			p.setPreferenceLocked(prefLanguage, language, 0.8, "project "+name+" language change")
			project.Language = language
		}
	}
}

func (p *UserProfile) extractLanguagePreference(text string) {
	for _, match := range languagePrefPattern.FindAllStringSubmatch(text, -1) {
		if language := canonicalLanguage(match[1]); language != "" {
			p.setPreferenceLocked(prefLanguage, language, 0.9, "stated preference")
		}
	}
}

func (p *UserProfile) extractGoals(text string) {
	for _, match := range goalPattern.FindAllStringSubmatch(text, -1) {
		goal := strings.TrimSpace(match[1])
		if len(goal) < goalMinLen || len(goal) > goalMaxLen {
			continue
		}
		duplicate := false
		for _, existing := range p.goals {
			if strings.EqualFold(existing, goal) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			p.goals = append(p.goals, goal)
		}
	}
}

func (p *UserProfile) extractEntities(text string) {
	for i, token := range strings.Fields(text) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if !capitalizedToken.MatchString(token) || entityStopList[token] {
			continue
		}
		// Skip sentence-starting words, they are capitalized by convention.
		if i == 0 && len(token) > 1 && strings.ToLower(token[1:]) == token[1:] {
			if _, known := p.entities[token]; !known {
				continue
			}
		}

		entity, exists := p.entities[token]
		if !exists {
			p.entities[token] = &Entity{
				Name:      token,
				Type:      "named",
				Mentions:  1,
				FirstSeen: p.turns,
				LastSeen:  p.turns,
			}
			continue
		}
		entity.Mentions++
		entity.LastSeen = p.turns
	}
}

// setPreferenceLocked overwrites a preference value, appending a change
// record when the value actually changes. Caller holds the write lock.
func (p *UserProfile) setPreferenceLocked(category, value string, confidence float64, reason string) {
	pref, exists := p.preferences[category]
	if !exists {
		p.preferences[category] = &Preference{
			Category:   category,
			Value:      value,
			Confidence: confidence,
			TurnSet:    p.turns,
		}
		return
	}
	if pref.Value == value {
		pref.Confidence = confidence
		return
	}
	pref.History = append(pref.History, PreferenceChange{
		OldValue: pref.Value,
		NewValue: value,
		Turn:     p.turns,
		Reason:   reason,
	})
	pref.Value = value
	pref.Confidence = confidence
	pref.TurnSet = p.turns
}

// SetRule records an explicit preference or rule, e.g. category "deletion"
// with value "no_delete". Rules participate in contradiction detection.
func (p *UserProfile) SetRule(category, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPreferenceLocked(category, value, 1.0, "explicit rule")
}

// GetPreference returns a copy of the preference for category, or nil.
func (p *UserProfile) GetPreference(category string) *Preference {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pref, ok := p.preferences[category]
	if !ok {
		return nil
	}
	copied := *pref
	copied.History = append([]PreferenceChange(nil), pref.History...)
	return &copied
}

// Projects returns the tracked projects sorted by name.
func (p *UserProfile) Projects() []Project {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]Project, 0, len(p.projects))
	for _, project := range p.projects {
		result = append(result, *project)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Goals returns a copy of the extracted goals in extraction order.
func (p *UserProfile) Goals() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.goals...)
}

// DetectContradictions checks a query against stored preferences: a switch
// to a language different from the stored one, and mentions of anything a
// stored "no_<thing>" rule forbids.
func (p *UserProfile) DetectContradictions(query string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	contradictions := []string{}

	if pref, ok := p.preferences[prefLanguage]; ok {
		for _, match := range languageSwitchPattern.FindAllStringSubmatch(query, -1) {
			language := canonicalLanguage(match[1])
			if language != "" && language != pref.Value {
				contradictions = append(contradictions, fmt.Sprintf(
					"query mentions %s but stated language preference is %s", language, pref.Value))
				break
			}
		}
	}

	lowerQuery := strings.ToLower(query)
	categories := make([]string, 0, len(p.preferences))
	for category := range p.preferences {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		value := p.preferences[category].Value
		if !strings.HasPrefix(value, noRulePrefix) {
			continue
		}
		thing := strings.TrimPrefix(value, noRulePrefix)
		if thing != "" && strings.Contains(lowerQuery, strings.ToLower(thing)) {
			contradictions = append(contradictions, fmt.Sprintf(
				"query mentions %q which violates rule %s", thing, value))
		}
	}

	return contradictions
}

// ContextString renders the profile as a deterministic human-readable
// fragment for prompt injection: projects, preferences, and the three most
// recent goals.
func (p *UserProfile) ContextString() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var b strings.Builder

	if len(p.projects) > 0 {
		names := make([]string, 0, len(p.projects))
		for name := range p.projects {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Projects:")
		for _, name := range names {
			project := p.projects[name]
			if project.Language != "" {
				fmt.Fprintf(&b, " %s (%s);", project.Name, project.Language)
			} else {
				fmt.Fprintf(&b, " %s;", project.Name)
			}
		}
		b.WriteString("\n")
	}

	if len(p.preferences) > 0 {
		categories := make([]string, 0, len(p.preferences))
		for category := range p.preferences {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		b.WriteString("Preferences:")
		for _, category := range categories {
			fmt.Fprintf(&b, " %s=%s;", category, p.preferences[category].Value)
		}
		b.WriteString("\n")
	}

	if len(p.goals) > 0 {
		start := len(p.goals) - recentGoalsMax
		if start < 0 {
			start = 0
		}
		b.WriteString("Goals:")
		for _, goal := range p.goals[start:] {
			fmt.Fprintf(&b, " %s;", goal)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// TurnCount returns how many messages have been extracted.
func (p *UserProfile) TurnCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.turns
}

// ContentChars approximates the profile's context footprint in characters.
func (p *UserProfile) ContentChars() int {
	return len(p.ContextString())
}

func canonicalLanguage(token string) string {
	return knownLanguages[strings.ToLower(strings.TrimSpace(token))]
}
