package recommendation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

func TestCandidate_MarkValidOnce(t *testing.T) {
	c := NewCandidate("Maths", "Hindi", "https://youtube.com/watch?v=abc")

	assert.Equal(t, ValidityUnchecked, c.Validity)
	assert.Equal(t, "hindi", c.Language)

	require.NoError(t, c.MarkValid())
	assert.True(t, c.IsPersistable())

	// A second ruling, either way, is refused.
	assert.ErrorIs(t, c.MarkValid(), ErrAlreadyChecked)
	assert.ErrorIs(t, c.MarkInvalid("late"), ErrAlreadyChecked)
}

func TestCandidate_MarkInvalidKeepsReason(t *testing.T) {
	c := NewCandidate("Maths", "hindi", "not a url")

	require.NoError(t, c.MarkInvalid("malformed reference"))

	assert.False(t, c.IsPersistable())
	assert.Equal(t, "malformed reference", c.Reason)
	assert.ErrorIs(t, c.MarkValid(), ErrAlreadyChecked)
}

func TestNewCandidate_AcceptsEmptyReference(t *testing.T) {
	// Even a blank generator result becomes a candidate; the validator
	// is the single authority on acceptability.
	c := NewCandidate("Maths", "hindi", "")

	assert.True(t, c.Reference.IsEmpty())
	assert.Equal(t, ValidityUnchecked, c.Validity)
}

func TestNewRecommendation_RequiresValidatedCandidate(t *testing.T) {
	unchecked := NewCandidate("Maths", "hindi", "https://youtube.com/watch?v=abc")

	_, err := NewRecommendation(42, unchecked)
	assert.ErrorIs(t, err, ErrCandidateNotValidated)

	invalid := NewCandidate("Maths", "hindi", "dead")
	require.NoError(t, invalid.MarkInvalid("unreachable"))

	_, err = NewRecommendation(42, invalid)
	assert.ErrorIs(t, err, ErrCandidateNotValidated)
}

func TestNewRecommendation_FromValidCandidate(t *testing.T) {
	c := NewCandidate(" Maths ", "Hindi", "https://youtube.com/watch?v=abc")
	require.NoError(t, c.MarkValid())

	rec, err := NewRecommendation(42, c)
	require.NoError(t, err)

	assert.Equal(t, 42, rec.RollNo)
	assert.Equal(t, "Maths", rec.Subject)
	assert.Equal(t, "hindi", rec.Language)
	assert.Equal(t, Reference("https://youtube.com/watch?v=abc"), rec.Reference)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, "42:maths:hindi", rec.Key())
}

func TestNewRecommendation_Validation(t *testing.T) {
	valid := func(subject, language string) *Candidate {
		c := NewCandidate(subject, language, "https://youtube.com/watch?v=abc")
		require.NoError(t, c.MarkValid())
		return c
	}

	_, err := NewRecommendation(0, valid("Maths", "hindi"))
	assert.ErrorIs(t, err, ErrInvalidRollNo)

	_, err = NewRecommendation(42, valid("  ", "hindi"))
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = NewRecommendation(42, valid("Maths", ""))
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestTargetLanguages(t *testing.T) {
	assert.Equal(t, []string{"english", "hindi"}, TargetLanguages("Hindi"))

	// English-native students still get the pair; the upsert key
	// collapses it to one row.
	assert.Equal(t, []string{"english", "english"}, TargetLanguages("english"))
}

func TestSentinelErrors_CarrySharedKinds(t *testing.T) {
	// Repositories wrap the sentinel; the HTTP and chat layers branch
	// on the shared kind, so it must survive the wrapping.
	assert.True(t, shared.IsNotFound(fmt.Errorf("get_recommendations: %w", ErrRecommendationNotFound)))
	assert.ErrorIs(t, ErrRecommendationNotFound, shared.ErrNotFound)
}
