package augment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/model"
)

func TestExtractKnowledgeBlock_PlainAnswer(t *testing.T) {
	answer, entry, err := augment.ExtractKnowledgeBlock("Just a plain reply.")
	require.NoError(t, err)
	assert.Equal(t, "Just a plain reply.", answer)
	assert.Nil(t, entry)
}

func TestExtractKnowledgeBlock_WithEntry(t *testing.T) {
	text := `Mining speed scales with your level.

---KNOWLEDGE---
topic: Mining Speed
subtopic: scaling
category: platform
confidence: 88
information: Mining speed scales with account level.
It also rises with uptime.
---END---`

	answer, entry, err := augment.ExtractKnowledgeBlock(text)
	require.NoError(t, err)
	assert.Equal(t, "Mining speed scales with your level.", answer)
	require.NotNil(t, entry)
	assert.Equal(t, "Mining Speed", entry.Topic)
	assert.Equal(t, "scaling", entry.Subtopic)
	assert.Equal(t, model.KnowledgePlatform, entry.Category)
	assert.Equal(t, 88, entry.Confidence)
	assert.Equal(t, "Mining speed scales with account level. It also rises with uptime.", entry.Information)
}

func TestExtractKnowledgeBlock_UnterminatedBlock(t *testing.T) {
	answer, entry, err := augment.ExtractKnowledgeBlock("The answer.\n---KNOWLEDGE---\ntopic: x")
	assert.Error(t, err)
	assert.Nil(t, entry)
	// The free-text answer survives even when the structured suffix is junk.
	assert.Equal(t, "The answer.", answer)
}

func TestExtractKnowledgeBlock_MissingRequiredFields(t *testing.T) {
	text := "Answer.\n---KNOWLEDGE---\ncategory: platform\n---END---"
	answer, entry, err := augment.ExtractKnowledgeBlock(text)
	assert.Error(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, "Answer.", answer)
}

func TestExtractKnowledgeBlock_UnknownCategory(t *testing.T) {
	text := "Answer.\n---KNOWLEDGE---\ntopic: x\ncategory: bogus\ninformation: y\n---END---"
	_, entry, err := augment.ExtractKnowledgeBlock(text)
	assert.Error(t, err)
	assert.Nil(t, entry)
}

func TestExtractKnowledgeBlock_DefaultConfidence(t *testing.T) {
	text := "Answer.\n---KNOWLEDGE---\ntopic: x\ncategory: general\ninformation: y\n---END---"
	_, entry, err := augment.ExtractKnowledgeBlock(text)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 70, entry.Confidence)
}
