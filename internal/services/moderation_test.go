package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicFilter(t *testing.T) {
	f := HeuristicFilter{}

	cases := []struct {
		name    string
		content string
		title   string
		action  ModerationAction
		reason  string
	}{
		{
			name:    "plain research text",
			content: "We can bound the error term using the second moment method and a dyadic decomposition.",
			action:  ModerationAllow,
		},
		{
			name:    "too short",
			content: "nice",
			action:  ModerationAllow,
			reason:  "Content too short",
		},
		{
			name:    "short with shortened link",
			content: "see bit.ly/abc",
			action:  ModerationFlag,
			reason:  "Contains suspicious links",
		},
		{
			name:    "spam",
			content: "Win the casino lottery and collect your prize, act now for a limited time offer!!!",
			action:  ModerationBlock,
			reason:  "Contains spam-like patterns",
		},
		{
			name:    "title is checked too",
			content: "the rest of this body is entirely ordinary prose about graphs",
			title:   "CASINO JACKPOT WINNER",
			action:  ModerationFlag,
			reason:  "Contains spam-like patterns",
		},
		{
			name:    "repeated characters",
			content: "this is sooooooo obviously true and everyone knows it",
			action:  ModerationAllow,
			reason:  "Contains spam-like patterns",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := f.Moderate(tc.content, tc.title)
			assert.Equal(t, tc.action, res.Action, "score %d reasons %v", res.Score, res.Reasons)
			if tc.reason != "" {
				assert.Contains(t, res.Reasons, tc.reason)
			}
			assert.LessOrEqual(t, len(res.Reasons), 3)
		})
	}
}

func TestHeuristicFilterLineBreaks(t *testing.T) {
	content := strings.Repeat("a line of honest words\n", 25)
	res := HeuristicFilter{}.Moderate(content, "")
	assert.Equal(t, 25, res.Score)
	assert.Equal(t, ModerationFlag, res.Action)
	assert.Equal(t, []string{"Excessive line breaks"}, res.Reasons)
}

func TestCountRepeatedRuns(t *testing.T) {
	assert.Equal(t, 0, countRepeatedRuns("aaaaa", 6))
	assert.Equal(t, 1, countRepeatedRuns("aaaaaa", 6))
	assert.Equal(t, 2, countRepeatedRuns("xxxxxxx yyyyyyyy", 6))
	assert.Equal(t, 1, countRepeatedRuns("ok!!!!!!", 6))
}
