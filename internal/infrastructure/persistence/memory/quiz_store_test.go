package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

func TestQuizStore_SaveAndGetPending(t *testing.T) {
	store := NewQuizStore()
	quiz := &assessment.Quiz{ID: "q-1", RollNo: 42, Subject: "maths"}

	require.NoError(t, store.Save(context.Background(), quiz, time.Minute))

	got, err := store.GetPending(context.Background(), 42)
	require.NoError(t, err)
	assert.Same(t, quiz, got)
}

func TestQuizStore_SaveReplacesPrevious(t *testing.T) {
	store := NewQuizStore()
	first := &assessment.Quiz{ID: "q-1", RollNo: 42, Subject: "maths"}
	second := &assessment.Quiz{ID: "q-2", RollNo: 42, Subject: "science"}

	require.NoError(t, store.Save(context.Background(), first, time.Minute))
	require.NoError(t, store.Save(context.Background(), second, time.Minute))

	got, err := store.GetPending(context.Background(), 42)
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestQuizStore_ExpiredQuizIsGone(t *testing.T) {
	store := NewQuizStore()
	quiz := &assessment.Quiz{ID: "q-1", RollNo: 42, Subject: "maths"}

	require.NoError(t, store.Save(context.Background(), quiz, -time.Second))

	_, err := store.GetPending(context.Background(), 42)
	assert.ErrorIs(t, err, assessment.ErrQuizNotFound)
}

func TestQuizStore_DeleteConsumesQuiz(t *testing.T) {
	store := NewQuizStore()
	quiz := &assessment.Quiz{ID: "q-1", RollNo: 42, Subject: "maths"}

	require.NoError(t, store.Save(context.Background(), quiz, time.Minute))
	require.NoError(t, store.Delete(context.Background(), 42))

	_, err := store.GetPending(context.Background(), 42)
	assert.ErrorIs(t, err, assessment.ErrQuizNotFound)
}

func TestQuizStore_UnknownStudent(t *testing.T) {
	store := NewQuizStore()

	_, err := store.GetPending(context.Background(), 7)
	assert.ErrorIs(t, err, assessment.ErrQuizNotFound)
}
