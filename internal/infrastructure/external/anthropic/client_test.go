package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

const sampleQuizJSON = `{
  "multiple_choice": [
    {"number": 1, "question": "What is 3/4 + 1/4?", "options": {"A": "1", "B": "1/2", "C": "4/8", "D": "2"}, "correct_answer": "A"},
    {"number": 2, "question": "Which fraction is larger?", "options": {"A": "1/3", "B": "1/2", "C": "1/4", "D": "1/8"}, "correct_answer": "B"},
    {"number": 3, "question": "What is half of 10?", "options": {"A": "2", "B": "4", "C": "5", "D": "20"}, "correct_answer": "C"},
    {"number": 4, "question": "What is 2/2 equal to?", "options": {"A": "0", "B": "1", "C": "2", "D": "4"}, "correct_answer": "B"},
    {"number": 5, "question": "What is a quarter of 8?", "options": {"A": "2", "B": "3", "C": "4", "D": "6"}, "correct_answer": "A"}
  ],
  "scenarios": [
    {"number": 1, "question": "You cut a pizza into 8 slices and eat 3. What fraction is left?"},
    {"number": 2, "question": "Two friends share 6 apples equally. Explain how."},
    {"number": 3, "question": "A rope is 12 metres. You need a third of it. How much do you cut?"},
    {"number": 4, "question": "Explain why 2/4 and 1/2 are the same amount."},
    {"number": 5, "question": "You have 20 rupees and spend a quarter. How much is left?"}
  ]
}`

func TestQuizDTO_Parsing(t *testing.T) {
	var dto QuizDTO
	err := json.Unmarshal([]byte(sampleQuizJSON), &dto)
	require.NoError(t, err)

	assert.Len(t, dto.MultipleChoice, 5)
	assert.Len(t, dto.Scenarios, 5)

	first := dto.MultipleChoice[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "What is 3/4 + 1/4?", first.Question)
	assert.Equal(t, "A", first.CorrectAnswer)
	assert.Len(t, first.Options, 4)
	assert.Equal(t, "1/2", first.Options["B"])

	scenario := dto.Scenarios[1]
	assert.Equal(t, 2, scenario.Number)
	assert.Contains(t, scenario.Question, "apples")
}

func TestMapper_ExtractJSON(t *testing.T) {
	mapper := NewMapper()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare object", raw: `{"a": 1}`, want: `{"a": 1}`},
		{name: "fenced", raw: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fence without language", raw: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "leading prose", raw: "Here is the quiz:\n{\"a\": 1}", want: `{"a": 1}`},
		{name: "trailing prose", raw: "{\"a\": 1}\nLet me know if you need more.", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapper.ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapper_ExtractJSON_NoObject(t *testing.T) {
	mapper := NewMapper()

	_, err := mapper.ExtractJSON("I am sorry, I cannot create a quiz right now.")
	assert.ErrorIs(t, err, ErrNoJSONInResponse)
}

func TestMapper_QuizFromDTO(t *testing.T) {
	mapper := NewMapper()

	dto, err := mapper.ParseQuizResponse("```json\n" + sampleQuizJSON + "\n```")
	require.NoError(t, err)

	quiz, err := mapper.QuizFromDTO(dto, QuizParams{
		ID:       "quiz-1",
		RollNo:   7,
		Subject:  "math",
		Grade:    5,
		Language: "hindi",
	})
	require.NoError(t, err)

	assert.Equal(t, "quiz-1", quiz.ID)
	assert.Equal(t, 7, quiz.RollNo)
	assert.Len(t, quiz.MultipleChoice, 5)
	assert.Len(t, quiz.Scenarios, 5)

	// Options arrive as a map but must end up ordered A to D.
	options := quiz.MultipleChoice[0].Options
	require.Len(t, options, 4)
	assert.Equal(t, assessment.AnswerKey("A"), options[0].Key)
	assert.Equal(t, assessment.AnswerKey("D"), options[3].Key)
}

func TestMapper_QuizFromDTO_WrongQuestionCount(t *testing.T) {
	mapper := NewMapper()

	var dto QuizDTO
	require.NoError(t, json.Unmarshal([]byte(sampleQuizJSON), &dto))
	dto.Scenarios = dto.Scenarios[:3]

	_, err := mapper.QuizFromDTO(&dto, QuizParams{
		ID: "quiz-1", RollNo: 7, Subject: "math", Grade: 5, Language: "hindi",
	})
	assert.ErrorIs(t, err, assessment.ErrInvalidQuizStructure)
}

func TestMapper_GradesFromDTO(t *testing.T) {
	mapper := NewMapper()

	dto, err := mapper.ParseEvaluationResponse(`{
  "grades": [
    {"number": 1, "points": 20, "comment": "Perfect reasoning."},
    {"number": 2, "points": 15, "comment": "Right idea, small slip."},
    {"number": 3, "points": 0, "comment": "Off-topic, try again."}
  ]
}`)
	require.NoError(t, err)

	grades, err := mapper.GradesFromDTO(dto)
	require.NoError(t, err)

	require.Len(t, grades, 3)
	assert.Equal(t, 20, grades[0].Points)
	assert.Equal(t, "Right idea, small slip.", grades[1].Comment)
}

func TestMapper_GradesFromDTO_OffLadderPoints(t *testing.T) {
	mapper := NewMapper()

	dto := &EvaluationDTO{
		Grades: []ScenarioGradeDTO{
			{Number: 1, Points: 17, Comment: "close"},
		},
	}

	_, err := mapper.GradesFromDTO(dto)
	assert.ErrorIs(t, err, assessment.ErrInvalidScenarioPoints)
}

func TestMapper_ReferenceFromResponse(t *testing.T) {
	mapper := NewMapper()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare url",
			raw:  "https://www.youtube.com/watch?v=abc123XYZ_-",
			want: "https://www.youtube.com/watch?v=abc123XYZ_-",
		},
		{
			name: "surrounding whitespace",
			raw:  "  https://www.youtube.com/watch?v=abc123XYZ_-\n",
			want: "https://www.youtube.com/watch?v=abc123XYZ_-",
		},
		{
			name: "angle brackets",
			raw:  "<https://www.youtube.com/watch?v=abc123XYZ_->",
			want: "https://www.youtube.com/watch?v=abc123XYZ_-",
		},
		{
			name: "prose around url",
			raw:  "Here you go: https://www.youtube.com/watch?v=abc123XYZ_- enjoy!",
			want: "https://www.youtube.com/watch?v=abc123XYZ_-",
		},
		{
			name: "empty response stays empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.ReferenceFromResponse(tt.raw))
		})
	}
}

func TestRenderQuizPrompt(t *testing.T) {
	user, err := renderTemplate(quizUserTmpl, quizPromptData{
		Subject:    "science",
		Grade:      8,
		Language:   "tamil",
		Difficulty: "Build conceptual depth with detailed explanations.",
		PerSection: 5,
	})
	require.NoError(t, err)

	assert.Contains(t, user, "grade 8")
	assert.Contains(t, user, `"science"`)
	assert.Contains(t, user, "tamil")
	assert.Contains(t, user, "exactly 5 multiple choice")
}
