package chat

import (
	"context"
	"strconv"
	"strings"

	"github.com/study-buddy/study-buddy-backend/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER FLOW
// Verbs: profile, student <roll>, average <grade> <subject>.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) teacherFlow(ctx context.Context, session *Session, text string) string {
	fields := strings.Fields(strings.ToLower(text))

	switch fields[0] {
	case "profile":
		dto, err := r.handlers.GetTeacher.Handle(ctx, query.GetTeacherQuery{StaffID: session.StaffID})
		if err != nil {
			return r.presenter.Error(err)
		}
		return r.presenter.TeacherProfile(dto)

	case "student":
		if len(fields) < 2 {
			return r.presenter.Prompt("which student? like: student 42")
		}
		rollNo, err := strconv.Atoi(fields[1])
		if err != nil || rollNo <= 0 {
			return r.presenter.Prompt("that roll number does not look right, like: student 42")
		}

		dto, qerr := r.handlers.GetStudent.Handle(ctx, query.GetStudentQuery{RollNo: rollNo})
		if qerr != nil {
			return r.presenter.Error(qerr)
		}
		return r.presenter.StudentProfile(dto)

	case "average":
		if len(fields) < 3 {
			return r.presenter.Prompt("which class? like: average 8 maths")
		}
		grade, err := strconv.Atoi(fields[1])
		if err != nil {
			return r.presenter.Prompt("that grade does not look right, like: average 8 maths")
		}

		subject := strings.Join(fields[2:], " ")
		dto, qerr := r.handlers.GetClassAverage.Handle(ctx, query.GetClassAverageQuery{
			StaffID: session.StaffID,
			Grade:   grade,
			Subject: subject,
		})
		if qerr != nil {
			return r.presenter.Error(qerr)
		}
		return r.presenter.ClassAverage(dto)

	default:
		return r.presenter.TeacherHelp()
	}
}
