package talkpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyShaStable(t *testing.T) {
	assert.Equal(t, ReplySha("hello", 0), ReplySha("hello", 0))
	assert.Len(t, ReplySha("hello", 0), 64)
}

func TestReplyShaDependsOnDepth(t *testing.T) {
	// Identical text at a different nesting level is a different reply.
	assert.NotEqual(t, ReplySha("hello", 0), ReplySha("hello", 1))
}

func TestTopicShaDependsOnSection(t *testing.T) {
	assert.Equal(t, TopicSha("Weather", 1), TopicSha("Weather", 1))
	assert.NotEqual(t, TopicSha("Weather", 1), TopicSha("Weather", 2))
	assert.NotEqual(t, TopicSha("Weather", 1), TopicSha("Climate", 1))
}

func TestRepliesShaOrderSensitive(t *testing.T) {
	a := ReplySha("a", 0)
	b := ReplySha("b", 0)
	assert.Equal(t, RepliesSha([]string{a, b}), RepliesSha([]string{a, b}))
	assert.NotEqual(t, RepliesSha([]string{a, b}), RepliesSha([]string{b, a}))
	assert.NotEqual(t, RepliesSha(nil), RepliesSha([]string{a}))
}
