package scoring

import "strings"

// QuestionType is the interrogative shape of a query.
type QuestionType string

const (
	QuestionHow        QuestionType = "how"
	QuestionWhat       QuestionType = "what"
	QuestionWhy        QuestionType = "why"
	QuestionList       QuestionType = "list"
	QuestionDifference QuestionType = "difference"
	QuestionWhen       QuestionType = "when"
	QuestionWho        QuestionType = "who"
	QuestionUnknown    QuestionType = "unknown"
)

// DetectQuestionType classifies the interrogative type of a normalized query
// via prefix and keyword rules.
func DetectQuestionType(q string) QuestionType {
	switch {
	case strings.Contains(q, "difference between"), strings.HasPrefix(q, "compare"),
		strings.Contains(q, " versus "), strings.Contains(q, " vs "):
		return QuestionDifference
	case strings.HasPrefix(q, "how "):
		return QuestionHow
	case strings.HasPrefix(q, "why "):
		return QuestionWhy
	case strings.HasPrefix(q, "list "), strings.Contains(q, "examples of"),
		strings.HasPrefix(q, "name some"), strings.Contains(q, "what are some"):
		return QuestionList
	case strings.HasPrefix(q, "what "), strings.HasPrefix(q, "define "),
		strings.Contains(q, "meaning of"):
		return QuestionWhat
	case strings.HasPrefix(q, "when "):
		return QuestionWhen
	case strings.HasPrefix(q, "who "):
		return QuestionWho
	}
	return QuestionUnknown
}

// markers returns the award and the content markers that make an entry
// type-appropriate for this question type.
func (t QuestionType) markers() (float64, []string) {
	switch t {
	case QuestionHow:
		return 4, []string{"how to", "steps", "step 1", "first,", "process", "procedure"}
	case QuestionWhat:
		return 3, []string{" is ", " are ", "refers to", "defined as", "means"}
	case QuestionWhy:
		return 4, []string{"because", "reason", "due to", "caused by", "so that"}
	case QuestionList:
		return 4, []string{"include", "such as", "examples", "types of", "1.", "- "}
	case QuestionDifference:
		return 4, []string{"whereas", "unlike", "difference", "compared to", "while"}
	case QuestionWhen:
		return 3, []string{"in 1", "in 2", "date", "year", "century", "during"}
	case QuestionWho:
		return 3, []string{"founded", "invented", "discovered", "born", "person"}
	}
	return 0, nil
}
