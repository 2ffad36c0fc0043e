package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/study-buddy/study-buddy-backend/internal/application/command"
	"github.com/study-buddy/study-buddy-backend/internal/application/query"
	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT FLOW
// Verbs: profile, recommend, courses, quiz <subject>, results. While a
// quiz is pending, any other message is treated as an answer sheet.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) studentFlow(ctx context.Context, session *Session, text string) string {
	fields := strings.Fields(strings.ToLower(text))
	verb := fields[0]

	// An answer sheet takes priority: the student is mid-quiz and their
	// message is the submission, not a verb.
	if session.PendingQuiz && !isStudentVerb(verb) {
		return r.submitAnswers(ctx, session, text)
	}

	switch verb {
	case "profile":
		dto, err := r.handlers.GetStudent.Handle(ctx, query.GetStudentQuery{RollNo: session.RollNo})
		if err != nil {
			return r.presenter.Error(err)
		}
		return r.presenter.StudentProfile(dto)

	case "recommend":
		report, err := r.pipeline.Run(ctx, session.RollNo)
		if err != nil {
			return r.presenter.Error(err)
		}
		return r.presenter.PipelineReport(report)

	case "courses":
		listing, err := r.handlers.ListRecommendations.Handle(ctx, query.ListRecommendationsQuery{RollNo: session.RollNo})
		if err != nil {
			return r.presenter.Error(err)
		}
		return r.presenter.Recommendations(listing)

	case "quiz":
		if !r.features.QuizEnabled {
			return r.presenter.Prompt("quizzes are not available right now")
		}
		if len(fields) < 2 {
			return r.presenter.Prompt("which subject? like: quiz maths")
		}

		subject := strings.Join(fields[1:], " ")
		result, err := r.handlers.GenerateQuiz.Handle(ctx, command.GenerateQuizCommand{
			RollNo:  session.RollNo,
			Subject: subject,
		})
		if err != nil {
			return r.presenter.Error(err)
		}

		session.PendingQuiz = true
		return r.presenter.Quiz(result.Quiz, result.ExpiresIn)

	case "results":
		subject := ""
		if len(fields) > 1 {
			subject = strings.Join(fields[1:], " ")
		}
		results, err := r.handlers.GetStudentResults.Handle(ctx, query.GetStudentResultsQuery{
			RollNo:  session.RollNo,
			Subject: subject,
		})
		if err != nil {
			return r.presenter.Error(err)
		}
		return r.presenter.Results(results)

	default:
		return r.presenter.StudentHelp(r.features.QuizEnabled)
	}
}

// isStudentVerb reports whether a word is one of the flow verbs. Used
// to let "profile" etc. work even while a quiz is pending.
func isStudentVerb(word string) bool {
	switch word {
	case "profile", "recommend", "courses", "quiz", "results":
		return true
	default:
		return false
	}
}

// submitAnswers parses the message as an answer sheet and evaluates the
// pending quiz.
func (r *Router) submitAnswers(ctx context.Context, session *Session, text string) string {
	sheet, ok := parseAnswerSheet(text)
	if !ok {
		return r.presenter.Prompt("could not read your answers; reply with lines like \"1 A\" for each question and \"s1 your answer\" for each scenario")
	}

	result, err := r.handlers.EvaluateQuiz.Handle(ctx, command.EvaluateQuizCommand{
		RollNo: session.RollNo,
		Sheet:  sheet,
	})
	if err != nil {
		// An expired quiz cannot be retried; clear the flag so the
		// student can request a new one.
		if errors.Is(err, assessment.ErrQuizNotFound) {
			session.PendingQuiz = false
		}
		return r.presenter.Error(err)
	}

	session.PendingQuiz = false
	return r.presenter.Evaluation(result)
}

// parseAnswerSheet reads one answer per line. "1 A" (also "1. A" and
// "1: a") answers multiple-choice question 1; "s1 <text>" answers
// scenario question 1. Returns false when no line parses.
func parseAnswerSheet(text string) (assessment.AnswerSheet, bool) {
	sheet := assessment.AnswerSheet{
		QuizAnswers:     make(map[int]string),
		ScenarioAnswers: make(map[int]string),
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		key := strings.ToLower(strings.TrimRight(fields[0], ".:"))

		if number, ok := parseQuestionNumber(key); ok && len(fields) >= 2 {
			sheet.QuizAnswers[number] = strings.ToUpper(fields[1])
			continue
		}

		if strings.HasPrefix(key, "s") {
			if number, ok := parseQuestionNumber(key[1:]); ok && len(fields) >= 2 {
				sheet.ScenarioAnswers[number] = strings.TrimSpace(line[len(fields[0]):])
			}
		}
	}

	if len(sheet.QuizAnswers) == 0 && len(sheet.ScenarioAnswers) == 0 {
		return assessment.AnswerSheet{}, false
	}
	return sheet, true
}

// parseQuestionNumber accepts 1 through the questions-per-section cap.
func parseQuestionNumber(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n := int(s[0] - '0')
	if n > assessment.QuestionsPerSection {
		return 0, false
	}
	return n, true
}
