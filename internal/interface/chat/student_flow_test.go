package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerSheet(t *testing.T) {
	text := "1 A\n2. b\n3: C\n4 d\n5 A\ns1 the current splits evenly\ns2 heat rises\n"

	sheet, ok := parseAnswerSheet(text)
	require.True(t, ok)

	assert.Equal(t, map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"}, sheet.QuizAnswers)
	assert.Equal(t, "the current splits evenly", sheet.ScenarioAnswers[1])
	assert.Equal(t, "heat rises", sheet.ScenarioAnswers[2])
}

func TestParseAnswerSheet_SkipsBlankAndJunkLines(t *testing.T) {
	text := "\n1 A\n\nthanks!\n9 B\ns9 out of range\ns2 valid answer\n"

	sheet, ok := parseAnswerSheet(text)
	require.True(t, ok)

	// Question 9 and scenario 9 are beyond the section size.
	assert.Equal(t, map[int]string{1: "A"}, sheet.QuizAnswers)
	assert.Equal(t, map[int]string{2: "valid answer"}, sheet.ScenarioAnswers)
}

func TestParseAnswerSheet_NothingParses(t *testing.T) {
	_, ok := parseAnswerSheet("hello, how do i submit this?")
	assert.False(t, ok)
}

func TestParseQuestionNumber(t *testing.T) {
	n, ok := parseQuestionNumber("3")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = parseQuestionNumber("0")
	assert.False(t, ok)

	_, ok = parseQuestionNumber("6")
	assert.False(t, ok)

	_, ok = parseQuestionNumber("12")
	assert.False(t, ok)
}

func TestSession_AppendTurnCapsHistory(t *testing.T) {
	session := &Session{ID: "s-1", Role: RoleTutor}

	for i := 0; i < maxHistoryTurns+10; i++ {
		session.AppendTurn("user", "message")
	}

	assert.Len(t, session.History, maxHistoryTurns)
}

func TestSession_ResetClearsEverythingButID(t *testing.T) {
	session := &Session{
		ID:          "s-2",
		Role:        RoleStudent,
		RollNo:      12,
		PendingQuiz: true,
		History:     []Turn{{Role: "user", Text: "hi"}},
	}

	session.Reset()

	assert.Equal(t, "s-2", session.ID)
	assert.Equal(t, RoleUnset, session.Role)
	assert.Zero(t, session.RollNo)
	assert.False(t, session.PendingQuiz)
	assert.Empty(t, session.History)
}
