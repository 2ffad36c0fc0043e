package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/study-buddy/study-buddy-backend/config"
	"github.com/study-buddy/study-buddy-backend/internal/application/command"
	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/application/query"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/service"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Dispatches each message on the session's role tag. The flows are
// plain methods over the application handlers; the router only owns
// session lifecycle and role selection.
// ══════════════════════════════════════════════════════════════════════════════

// PipelineRunner runs the recommendation pipeline for one student.
// Satisfied by pipeline.Runner.
type PipelineRunner interface {
	Run(ctx context.Context, rollNo int) (*pipeline.Report, error)
}

// Tutor answers free-form questions with conversation context.
// Satisfied by the tutor service adapter.
type Tutor interface {
	Reply(ctx context.Context, history []service.TutorTurn, message string) (string, error)
}

// Handlers bundles the application handlers the flows call.
type Handlers struct {
	GetStudent          *query.GetStudentHandler
	GetTeacher          *query.GetTeacherHandler
	GetClassAverage     *query.GetClassAverageHandler
	ListRecommendations *query.ListRecommendationsHandler
	GetStudentResults   *query.GetStudentResultsHandler
	GenerateQuiz        *command.GenerateQuizHandler
	EvaluateQuiz        *command.EvaluateQuizHandler
}

// RouterConfig contains the router dependencies.
type RouterConfig struct {
	Sessions SessionStore
	Handlers Handlers
	Pipeline PipelineRunner
	Tutor    Tutor
	Features config.FeaturesConfig
	Logger   *slog.Logger
}

// Router owns the chat sessions and dispatches messages to the flows.
type Router struct {
	sessions  SessionStore
	handlers  Handlers
	pipeline  PipelineRunner
	tutor     Tutor
	features  config.FeaturesConfig
	presenter *Presenter
	logger    *slog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		sessions:  cfg.Sessions,
		handlers:  cfg.Handlers,
		pipeline:  cfg.Pipeline,
		tutor:     cfg.Tutor,
		features:  cfg.Features,
		presenter: NewPresenter(),
		logger:    logger.With("component", "chat_router"),
	}
}

// Handle processes one message for a session and returns the reply
// text. A missing session is created on the fly; the session is saved
// after every turn so state survives between requests.
func (r *Router) Handle(ctx context.Context, sessionID, text string) (string, error) {
	if sessionID == "" {
		return "", errors.New("chat: session id is required")
	}

	session, err := r.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return "", fmt.Errorf("chat: load session: %w", err)
		}
		session = NewSession(sessionID)
	}

	text = strings.TrimSpace(text)
	reply := r.dispatch(ctx, session, text)

	if err := r.sessions.Save(ctx, session); err != nil {
		// The reply is still good; the next request starts from role
		// selection again.
		r.logger.Warn("failed to save session", "session_id", sessionID, "error", err)
	}

	return reply, nil
}

// dispatch routes a message to the flow matching the session role.
func (r *Router) dispatch(ctx context.Context, session *Session, text string) string {
	if text == "" {
		return r.presenter.Empty()
	}

	// "exit" works from any flow and returns to role selection.
	if strings.EqualFold(text, "exit") {
		session.Reset()
		return r.presenter.RoleSelection(r.features.TutorEnabled)
	}

	switch session.Role {
	case RoleStudent:
		return r.studentFlow(ctx, session, text)
	case RoleTeacher:
		return r.teacherFlow(ctx, session, text)
	case RoleTutor:
		return r.tutorFlow(ctx, session, text)
	default:
		return r.selectRole(ctx, session, text)
	}
}

// selectRole binds an untagged session to a flow.
//
// Accepted greetings: "student <roll>", "teacher <staff>", "tutor".
func (r *Router) selectRole(ctx context.Context, session *Session, text string) string {
	fields := strings.Fields(strings.ToLower(text))

	switch fields[0] {
	case "student":
		if len(fields) < 2 {
			return r.presenter.Prompt("please include your roll number, like: student 42")
		}
		rollNo, err := strconv.Atoi(fields[1])
		if err != nil || rollNo <= 0 {
			return r.presenter.Prompt("that roll number does not look right, like: student 42")
		}

		// Verify the profile exists before binding the session.
		dto, qerr := r.handlers.GetStudent.Handle(ctx, query.GetStudentQuery{RollNo: rollNo})
		if qerr != nil {
			return r.presenter.Error(qerr)
		}

		session.Role = RoleStudent
		session.RollNo = rollNo
		return r.presenter.StudentWelcome(dto.Name, r.features.QuizEnabled)

	case "teacher":
		if len(fields) < 2 {
			return r.presenter.Prompt("please include your staff id, like: teacher 7")
		}
		staffID, err := strconv.Atoi(fields[1])
		if err != nil || staffID <= 0 {
			return r.presenter.Prompt("that staff id does not look right, like: teacher 7")
		}

		dto, qerr := r.handlers.GetTeacher.Handle(ctx, query.GetTeacherQuery{StaffID: staffID})
		if qerr != nil {
			return r.presenter.Error(qerr)
		}

		session.Role = RoleTeacher
		session.StaffID = staffID
		return r.presenter.TeacherWelcome(dto.Name)

	case "tutor":
		if !r.features.TutorEnabled {
			return r.presenter.Prompt("the tutor is not available right now")
		}
		session.Role = RoleTutor
		return r.presenter.TutorWelcome()

	default:
		return r.presenter.RoleSelection(r.features.TutorEnabled)
	}
}

// tutorFlow passes the message to the LLM with the session history.
func (r *Router) tutorFlow(ctx context.Context, session *Session, text string) string {
	if r.tutor == nil || !r.features.TutorEnabled {
		return r.presenter.Prompt("the tutor is not available right now")
	}

	history := make([]service.TutorTurn, 0, len(session.History))
	for _, turn := range session.History {
		history = append(history, service.TutorTurn{Role: turn.Role, Text: turn.Text})
	}

	reply, err := r.tutor.Reply(ctx, history, text)
	if err != nil {
		r.logger.Warn("tutor reply failed", "session_id", session.ID, "error", err)
		return r.presenter.Error(err)
	}

	session.AppendTurn("user", text)
	session.AppendTurn("assistant", reply)
	return reply
}
