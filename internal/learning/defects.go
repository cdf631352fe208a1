package learning

import (
	"strings"

	"github.com/tokenforge/sage/internal/model"
)

// Answer length bands for the brevity defects.
const (
	tooBriefChars   = 40
	tooVerboseChars = 1200
)

// negativeMarkers in a comment indicate the user found the answer wrong or
// unhelpful rather than merely incomplete.
var negativeMarkers = []string{
	"wrong", "incorrect", "not true", "confusing", "unhelpful", "useless",
	"doesn't answer", "does not answer", "irrelevant", "misleading",
}

// contradictionPairs are phrases that, appearing together, suggest the
// answer argues against itself.
var contradictionPairs = [][2]string{
	{"always", "never"},
	{"yes", "no,"},
	{"you can", "you cannot"},
	{"is possible", "is not possible"},
}

// detectDefects names the specific reasoning defects visible in a poorly
// rated answer.
func detectDefects(event model.FeedbackEvent) []string {
	var defects []string
	answer := strings.ToLower(event.Answer)
	question := strings.ToLower(event.Question)
	comment := strings.ToLower(event.Comment)

	if len(event.Answer) < tooBriefChars {
		defects = append(defects, "too_brief")
	}
	if len(event.Answer) > tooVerboseChars {
		defects = append(defects, "too_verbose")
	}

	if strings.HasPrefix(question, "how ") &&
		!strings.Contains(answer, "step") && !strings.Contains(answer, "first") {
		defects = append(defects, "missing_steps")
	}
	if strings.HasPrefix(question, "why ") &&
		!strings.Contains(answer, "because") && !strings.Contains(answer, "reason") {
		defects = append(defects, "missing_explanation")
	}

	for _, pair := range contradictionPairs {
		if strings.Contains(answer, pair[0]) && strings.Contains(answer, pair[1]) {
			defects = append(defects, "contradiction")
			break
		}
	}

	for _, m := range negativeMarkers {
		if strings.Contains(comment, m) {
			defects = append(defects, "negative_comment")
			break
		}
	}
	return defects
}

// defectRules translates detected defects into corrective pattern rules.
func defectRules(defects []string) []string {
	var rules []string
	for _, d := range defects {
		switch d {
		case "too_brief":
			rules = append(rules, "Expand the answer with at least one supporting detail.")
		case "too_verbose":
			rules = append(rules, "Keep the answer under three short paragraphs.")
		case "missing_steps":
			rules = append(rules, "Answer how-questions as an ordered list of steps.")
		case "missing_explanation":
			rules = append(rules, "Answer why-questions with an explicit cause.")
		case "contradiction":
			rules = append(rules, "State one position; do not hedge in both directions.")
		case "negative_comment":
			rules = append(rules, "Verify the central fact against knowledge before asserting it.")
		}
	}
	return rules
}
