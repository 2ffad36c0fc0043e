package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/application/command"
	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/application/query"
	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
	"github.com/study-buddy/study-buddy-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Formats read models and run reports as plain chat text. No markup:
// the transport is a JSON chat API, not a rich client.
// ══════════════════════════════════════════════════════════════════════════════

// Presenter formats chat replies.
type Presenter struct{}

// NewPresenter creates a new Presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Prompts and menus
// ─────────────────────────────────────────────────────────────────────────────

// Empty is the reply to a blank message.
func (p *Presenter) Empty() string {
	return "Say something and I'll try to help. Type \"exit\" anytime to start over."
}

// Prompt wraps a short correction hint.
func (p *Presenter) Prompt(hint string) string {
	return "🤔 " + hint
}

// RoleSelection asks the client to pick a flow.
func (p *Presenter) RoleSelection(tutorEnabled bool) string {
	var sb strings.Builder
	sb.WriteString("👋 Welcome to Study Buddy!\n\n")
	sb.WriteString("Who are you?\n")
	sb.WriteString("• student <roll number> — study recommendations, quizzes, results\n")
	sb.WriteString("• teacher <staff id> — student lookups and class averages\n")
	if tutorEnabled {
		sb.WriteString("• tutor — ask me anything about your coursework\n")
	}
	return sb.String()
}

// StudentWelcome greets a freshly bound student session.
func (p *Presenter) StudentWelcome(name string, quizEnabled bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s! 🎓\n\n", name)
	sb.WriteString(p.studentVerbs(quizEnabled))
	return sb.String()
}

// StudentHelp lists the student verbs.
func (p *Presenter) StudentHelp(quizEnabled bool) string {
	return "Here's what I can do:\n\n" + p.studentVerbs(quizEnabled)
}

func (p *Presenter) studentVerbs(quizEnabled bool) string {
	var sb strings.Builder
	sb.WriteString("• profile — your scores and weak subjects\n")
	sb.WriteString("• recommend — find fresh study videos for your weak subjects\n")
	sb.WriteString("• courses — your saved study videos\n")
	if quizEnabled {
		sb.WriteString("• quiz <subject> — take a test\n")
	}
	sb.WriteString("• results — your past test results\n")
	sb.WriteString("• exit — start over\n")
	return sb.String()
}

// TeacherWelcome greets a freshly bound teacher session.
func (p *Presenter) TeacherWelcome(name string) string {
	return fmt.Sprintf("Hello %s! 📋\n\n%s", name, p.teacherVerbs())
}

// TeacherHelp lists the teacher verbs.
func (p *Presenter) TeacherHelp() string {
	return "Here's what I can do:\n\n" + p.teacherVerbs()
}

func (p *Presenter) teacherVerbs() string {
	var sb strings.Builder
	sb.WriteString("• profile — your teaching profile\n")
	sb.WriteString("• student <roll> — a student's scores\n")
	sb.WriteString("• average <grade> <subject> — class performance\n")
	sb.WriteString("• exit — start over\n")
	return sb.String()
}

// TutorWelcome greets a tutor session.
func (p *Presenter) TutorWelcome() string {
	return "I'm your study tutor 📚 Ask me anything about your coursework. Type \"exit\" to go back."
}

// ─────────────────────────────────────────────────────────────────────────────
// Profiles
// ─────────────────────────────────────────────────────────────────────────────

// StudentProfile formats a student read model.
func (p *Presenter) StudentProfile(dto *query.StudentDTO) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 %s — roll no %d, grade %d, %s\n", dto.Name, dto.RollNo, dto.Grade, titleCase(dto.Language))

	if len(dto.Scores) == 0 {
		sb.WriteString("\nNo scores recorded yet.")
		return sb.String()
	}

	sb.WriteString("\nScores:\n")
	for _, score := range dto.Scores {
		marker := "  "
		if score.Weak {
			marker = "⚠ "
		}
		fmt.Fprintf(&sb, "%s%s: %d\n", marker, titleCase(score.Subject), score.Score)
	}

	if len(dto.WeakSubjects) > 0 {
		fmt.Fprintf(&sb, "\nWeak subjects: %s\n", strings.Join(titleAll(dto.WeakSubjects), ", "))
		sb.WriteString("Say \"recommend\" and I'll find study videos for them.")
	} else {
		sb.WriteString("\nNo weak subjects. Keep it up! 💪")
	}
	return sb.String()
}

// TeacherProfile formats a teacher read model.
func (p *Presenter) TeacherProfile(dto *query.TeacherDTO) string {
	grades := make([]string, 0, len(dto.Grades))
	for _, g := range dto.Grades {
		grades = append(grades, fmt.Sprintf("%d", g))
	}
	return fmt.Sprintf("📋 %s — staff id %d\nSubject: %s\nGrades: %s",
		dto.Name, dto.StaffID, titleCase(dto.Subject), strings.Join(grades, ", "))
}

// ClassAverage formats a class aggregate.
func (p *Presenter) ClassAverage(dto *query.ClassAverageDTO) string {
	if dto.Count == 0 {
		return fmt.Sprintf("No recorded %s scores in grade %d yet.", titleCase(dto.Subject), dto.Grade)
	}
	return fmt.Sprintf("📊 Grade %d %s — %d students\nAverage: %.2f\nRange: %d to %d",
		dto.Grade, titleCase(dto.Subject), dto.Count, dto.Average, dto.Min, dto.Max)
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendations
// ─────────────────────────────────────────────────────────────────────────────

// Recommendations formats the stored listing grouped by subject.
func (p *Presenter) Recommendations(dto *query.RecommendationListDTO) string {
	if dto.Total == 0 {
		return "No saved study videos yet. Say \"recommend\" and I'll find some for your weak subjects."
	}

	var sb strings.Builder
	sb.WriteString("🎬 Your study videos:\n")
	for _, group := range dto.Subjects {
		fmt.Fprintf(&sb, "\n%s:\n", titleCase(group.Subject))
		for _, item := range group.Items {
			fmt.Fprintf(&sb, "  [%s] %s\n", titleCase(item.Language), item.Reference)
		}
	}
	return sb.String()
}

// PipelineReport formats the outcome of a recommendation run.
func (p *Presenter) PipelineReport(report *pipeline.Report) string {
	if len(report.WeakSubjects) == 0 {
		return "All your scores are 60 or above — nothing to recommend. Keep it up! 💪"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎬 Found materials for %d weak subject", len(report.WeakSubjects))
	if len(report.WeakSubjects) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(":\n")

	bySubject := make(map[string][]string)
	for _, rec := range report.Persisted {
		bySubject[rec.Subject] = append(bySubject[rec.Subject],
			fmt.Sprintf("  [%s] %s", titleCase(rec.Language), rec.Reference.String()))
	}

	for _, weak := range report.WeakSubjects {
		fmt.Fprintf(&sb, "\n%s (score %d):\n", titleCase(weak.Subject), weak.Score)
		lines, ok := bySubject[weak.Subject]
		if !ok {
			sb.WriteString("  no working links found this time, try again later\n")
			continue
		}
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nSay \"courses\" anytime to see your saved videos.")
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Quizzes and results
// ─────────────────────────────────────────────────────────────────────────────

// Quiz formats a generated quiz for the student, stripping the correct
// answers.
func (p *Presenter) Quiz(quiz *assessment.Quiz, expiresIn time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 %s quiz — you have %s to answer\n", titleCase(quiz.Subject), formatDuration(expiresIn))

	sb.WriteString("\nMultiple choice:\n")
	for _, q := range quiz.MultipleChoice {
		fmt.Fprintf(&sb, "\n%d. %s\n", q.Number, q.Text)
		for _, opt := range q.Options {
			fmt.Fprintf(&sb, "   %s) %s\n", opt.Key, opt.Text)
		}
	}

	sb.WriteString("\nScenarios:\n")
	for _, q := range quiz.Scenarios {
		fmt.Fprintf(&sb, "\nS%d. %s\n", q.Number, q.Text)
	}

	sb.WriteString("\nReply with one answer per line: \"1 A\" for multiple choice, \"s1 your answer\" for scenarios.")
	return sb.String()
}

// Evaluation formats a scored submission.
func (p *Presenter) Evaluation(result *command.EvaluateQuizResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 %s quiz scored!\n\n", titleCase(result.Subject))
	fmt.Fprintf(&sb, "Multiple choice: %d/100\n", result.QuizScore)
	fmt.Fprintf(&sb, "Scenarios: %d/100\n", result.EvaluatedScore)
	fmt.Fprintf(&sb, "Total: %d — %s\n", result.TotalScore, result.Feedback)

	if len(result.ScenarioGrades) > 0 {
		sb.WriteString("\nScenario feedback:\n")
		for _, grade := range result.ScenarioGrades {
			fmt.Fprintf(&sb, "  S%d (%d pts): %s\n", grade.Number, grade.Points, grade.Comment)
		}
	}
	return sb.String()
}

// Results formats the stored test history.
func (p *Presenter) Results(results []query.ResultDTO) string {
	if len(results) == 0 {
		return "No test results yet. Say \"quiz <subject>\" to take one."
	}

	var sb strings.Builder
	sb.WriteString("📊 Your test results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "%s — %s: total %d (quiz %d, scenarios %d) — %s\n",
			timeutil.FormatDate(r.TestDate), titleCase(r.Subject), r.TotalScore, r.QuizScore, r.EvaluatedScore, r.Feedback)
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

// Error maps application errors onto friendly chat text. The raw error
// stays in the logs, never in the reply.
func (p *Presenter) Error(err error) string {
	switch {
	case errors.Is(err, teacher.ErrGradeNotTaught):
		return "🚫 You can only view grades you teach."
	case errors.Is(err, assessment.ErrQuizNotFound):
		return "⏰ That quiz expired. Say \"quiz <subject>\" to get a new one."
	case shared.IsNotFound(err):
		return "🔍 I couldn't find that. Check the number and try again."
	case shared.IsAlreadyExists(err):
		return "⚠ That record already exists."
	case shared.IsValidation(err):
		return "🤔 That input doesn't look right. Check it and try again."
	case shared.IsExternalService(err):
		return "😓 I'm having trouble reaching my helpers right now. Please try again in a minute."
	default:
		return "😓 Something went wrong on my side. Please try again."
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// titleCase capitalizes the first letter of an ASCII word.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func titleAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = titleCase(w)
	}
	return out
}

// formatDuration renders a duration as whole minutes.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
