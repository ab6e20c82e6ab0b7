package services

import (
	"regexp"
	"slices"
	"strings"

	"hypoforum/internal/metrics"
)

type ModerationAction string

const (
	ModerationAllow ModerationAction = "allow"
	ModerationFlag  ModerationAction = "flag"
	ModerationBlock ModerationAction = "block"
)

// 判定阈值
const (
	blockScore = 50
	flagScore  = 20
	maxReasons = 3
)

type ModerationResult struct {
	Action  ModerationAction `json:"action"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
}

func (r ModerationResult) Flagged() bool {
	return r.Action != ModerationAllow
}

// ContentFilter scores user text before it is stored. title may be empty.
type ContentFilter interface {
	Moderate(content, title string) ModerationResult
}

var (
	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(buy|sell|cheap|discount|free|click here|visit now)\b.{0,30}(http|www|\.com|\.net|\.org)`),
		regexp.MustCompile(`(?i)\b(viagra|cialis|casino|lottery|prize|winner|inheritance)\b`),
		regexp.MustCompile(`(?i)\$\d+,?\d*\s*(USD|EUR|GBP|dollars|cash)`),
		regexp.MustCompile(`(?i)\b(work from home|make money|earn \$\d+ per day)\b`),
		regexp.MustCompile(`(?i)\b(100% guaranteed|no risk|act now|limited time)\b`),
		regexp.MustCompile(`[!?]{3,}`),
		regexp.MustCompile(`[A-Z]{10,}`),
	}
	suspiciousURLs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bit\.ly|tinyurl|t\.co|goo\.gl`),
		regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`),
	}
	htmlTagPattern = regexp.MustCompile(`(?i)<[a-z][^>]*>`)

	spamPhrases = []string{
		"click here to", "visit my website", "check out my profile",
		"make money fast", "earn from home", "work at home",
		"limited time offer", "act now", "call now", "order now",
		"credit card accepted", "no obligation", "risk free",
		"special promotion", "exclusive deal",
	}
)

const (
	reasonSpam       = "Contains spam-like patterns"
	reasonLinks      = "Contains suspicious links"
	reasonPromo      = "Contains promotional language"
	reasonFormatting = "Excessive formatting"
	reasonNewlines   = "Excessive line breaks"
	reasonShort      = "Content too short"
	reasonLong       = "Unusually long content"
)

// HeuristicFilter is the built-in pattern and length based filter.
type HeuristicFilter struct{}

func (HeuristicFilter) Moderate(content, title string) ModerationResult {
	text := content
	if title != "" {
		text = title + " " + content
	}
	lower := strings.ToLower(text)

	score := 0
	var reasons []string
	addReason := func(r string) {
		if !slices.Contains(reasons, r) {
			reasons = append(reasons, r)
		}
	}

	for _, p := range spamPatterns {
		if n := len(p.FindAllStringIndex(text, -1)); n > 0 {
			score += n * 15
			addReason(reasonSpam)
		}
	}
	if n := countRepeatedRuns(text, 6); n > 0 {
		score += n * 15
		addReason(reasonSpam)
	}

	for _, p := range suspiciousURLs {
		if p.MatchString(text) {
			score += 20
			addReason(reasonLinks)
		}
	}

	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			score += 10
			addReason(reasonPromo)
		}
	}

	if tags := len(htmlTagPattern.FindAllStringIndex(text, -1)); tags > 10 {
		score += tags * 2
		addReason(reasonFormatting)
	}

	if newlines := strings.Count(text, "\n"); newlines > 20 {
		score += newlines
		addReason(reasonNewlines)
	}

	words := len(strings.Fields(text))
	if words < 5 {
		score += 10
		addReason(reasonShort)
	}
	if words > 5000 {
		score += 5
		addReason(reasonLong)
	}

	action := ModerationAllow
	switch {
	case score >= blockScore:
		action = ModerationBlock
	case score >= flagScore:
		action = ModerationFlag
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return ModerationResult{Action: action, Score: score, Reasons: reasons}
}

// countRepeatedRuns counts runs of at least minRun identical characters.
// RE2 has no backreferences, so this replaces the (.)\1{5,} pattern.
func countRepeatedRuns(s string, minRun int) int {
	count, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			run++
		} else {
			if run >= minRun {
				count++
			}
			prev, run = r, 1
		}
	}
	if run >= minRun {
		count++
	}
	return count
}

func moderate(f ContentFilter, content, title string) ModerationResult {
	res := f.Moderate(content, title)
	metrics.ModerationVerdicts.WithLabelValues(string(res.Action)).Inc()
	return res
}
