package augment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tokenforge/sage/internal/model"
)

const (
	blockStart = "---KNOWLEDGE---"
	blockEnd   = "---END---"
)

// ExtractKnowledgeBlock splits a service reply into the free-text answer and
// an optional embedded knowledge suggestion. The answer is always returned
// with the structured suffix removed, even when the block is malformed; a
// malformed block yields a nil entry and the parse error for logging.
func ExtractKnowledgeBlock(text string) (answer string, entry *model.KnowledgeEntry, err error) {
	start := strings.Index(text, blockStart)
	if start < 0 {
		return strings.TrimSpace(text), nil, nil
	}
	answer = strings.TrimSpace(text[:start])

	rest := text[start+len(blockStart):]
	end := strings.Index(rest, blockEnd)
	if end < 0 {
		return answer, nil, fmt.Errorf("knowledge block not terminated")
	}

	e, perr := parseFields(rest[:end])
	if perr != nil {
		return answer, nil, perr
	}
	return answer, e, nil
}

// parseFields reads the colon-delimited block fields. Unknown keys are
// ignored; topic, category and information are required.
func parseFields(block string) (*model.KnowledgeEntry, error) {
	e := &model.KnowledgeEntry{Confidence: 70}
	var infoLines []string
	inInfo := false

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		key, value, found := strings.Cut(trimmed, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if inInfo && (!found || !isBlockKey(key)) {
			infoLines = append(infoLines, trimmed)
			continue
		}
		if !found {
			continue
		}

		switch key {
		case "topic":
			e.Topic = value
		case "subtopic":
			e.Subtopic = value
		case "category":
			e.Category = model.KnowledgeCategory(strings.ToLower(value))
		case "confidence":
			c, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("bad confidence %q", value)
			}
			e.Confidence = c
		case "information":
			inInfo = true
			if value != "" {
				infoLines = append(infoLines, value)
			}
		}
	}

	e.Information = strings.Join(infoLines, " ")
	if e.Topic == "" || e.Information == "" {
		return nil, fmt.Errorf("knowledge block missing topic or information")
	}
	switch e.Category {
	case model.KnowledgePlatform, model.KnowledgeDictionary, model.KnowledgeGeneral,
		model.KnowledgeTechnical, model.KnowledgeMarketplace, model.KnowledgeKYC:
	default:
		return nil, fmt.Errorf("unknown knowledge category %q", e.Category)
	}
	return e, nil
}

func isBlockKey(key string) bool {
	switch key {
	case "topic", "subtopic", "category", "confidence", "information":
		return true
	}
	return false
}
