package query

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CLASS AVERAGE QUERY
// Aggregates one subject across a grade for a teacher. Teachers only
// see grades they actually teach.
// ══════════════════════════════════════════════════════════════════════════════

// AverageCache caches class-average aggregates between requests.
// Implemented by the Redis average cache; any Get error counts as a
// miss.
type AverageCache interface {
	Get(ctx context.Context, grade int, subject string) (*student.ClassAverage, error)
	Set(ctx context.Context, avg *student.ClassAverage, ttl time.Duration) error
}

// GetClassAverageQuery contains the parameters for the aggregate.
type GetClassAverageQuery struct {
	// StaffID identifies the requesting teacher.
	StaffID int

	// Grade is the grade level to aggregate.
	Grade int

	// Subject is the subject to aggregate.
	Subject string
}

// Validate validates the query.
func (q GetClassAverageQuery) Validate() error {
	if q.StaffID <= 0 {
		return shared.NewDomainError("teacher", "GetClassAverage", shared.ErrInvalidID, "staff id must be positive")
	}
	if q.Grade < 1 || q.Grade > 10 {
		return shared.NewDomainError("teacher", "GetClassAverage", shared.ErrValueOutOfRange, "grade must be between 1 and 10")
	}
	if q.Subject == "" {
		return shared.NewDomainError("teacher", "GetClassAverage", shared.ErrEmptyValue, "subject is required")
	}
	return nil
}

// ClassAverageDTO is the read model of the aggregate.
type ClassAverageDTO struct {
	// Grade is the aggregated grade level.
	Grade int `json:"grade"`

	// Subject is the aggregated subject, spelled as queried.
	Subject string `json:"subject"`

	// Average is the mean score, rounded to two decimals.
	Average float64 `json:"average"`

	// Count is the number of students with a recorded score.
	Count int `json:"count"`

	// Min is the lowest recorded score.
	Min int `json:"min"`

	// Max is the highest recorded score.
	Max int `json:"max"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetClassAverageHandler handles the GetClassAverageQuery.
type GetClassAverageHandler struct {
	teacherRepo  teacher.Repository
	studentRepo  student.Repository
	averageCache AverageCache
	cacheTTL     time.Duration
}

// NewGetClassAverageHandler creates a new GetClassAverageHandler.
// The cache may be nil, which disables the cache-aside path.
func NewGetClassAverageHandler(
	teacherRepo teacher.Repository,
	studentRepo student.Repository,
	averageCache AverageCache,
	cacheTTL time.Duration,
) *GetClassAverageHandler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &GetClassAverageHandler{
		teacherRepo:  teacherRepo,
		studentRepo:  studentRepo,
		averageCache: averageCache,
		cacheTTL:     cacheTTL,
	}
}

// Handle executes the class average query. The access check runs before
// any aggregate work: a teacher asking about a grade they do not teach
// gets ErrGradeNotTaught, not an empty aggregate.
func (h *GetClassAverageHandler) Handle(ctx context.Context, q GetClassAverageQuery) (*ClassAverageDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_class_average: validation failed: %w", err)
	}

	requester, err := h.teacherRepo.GetByStaffID(ctx, teacher.StaffID(q.StaffID))
	if err != nil {
		return nil, fmt.Errorf("get_class_average: %w", err)
	}

	if err := requester.CanViewGrade(q.Grade); err != nil {
		return nil, fmt.Errorf("get_class_average: %w", err)
	}

	if h.averageCache != nil {
		if avg, err := h.averageCache.Get(ctx, q.Grade, q.Subject); err == nil {
			return toClassAverageDTO(avg), nil
		}
	}

	avg, err := h.studentRepo.ClassAverage(ctx, student.Grade(q.Grade), q.Subject)
	if err != nil {
		return nil, fmt.Errorf("get_class_average: %w", err)
	}

	if h.averageCache != nil {
		_ = h.averageCache.Set(ctx, avg, h.cacheTTL)
	}

	return toClassAverageDTO(avg), nil
}

// toClassAverageDTO maps the aggregate onto the read model.
func toClassAverageDTO(avg *student.ClassAverage) *ClassAverageDTO {
	return &ClassAverageDTO{
		Grade:   avg.Grade.Int(),
		Subject: avg.Subject,
		Average: avg.Average,
		Count:   avg.Count,
		Min:     avg.Min.Int(),
		Max:     avg.Max.Int(),
	}
}
