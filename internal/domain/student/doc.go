// Package student contains the student domain model of Study Buddy.
//
// This is the core of the business logic. The package defines:
//
//   - Entities: StudentProfile
//   - Value Objects: RollNo, Grade, Score, Language, Scores
//   - Repository interfaces: Repository, Cache
//
// # Architectural principles
//
// The package follows Clean Architecture and DDD:
//
//  1. Zero external dependencies, standard library only
//  2. Dependency Inversion: interfaces here, implementations in infrastructure
//  3. Rich Domain Model: business rules are encapsulated in the entities
//
// # Main entities
//
// StudentProfile is the central entity representing a school student:
//
//	profile, err := NewStudentProfile(NewStudentParams{
//	    RollNo:   RollNo(101),
//	    Name:     "Rahul Kumar",
//	    Grade:    Grade(5),
//	    Language: LanguageHindi,
//	    Scores: Scores{
//	        {Subject: "Maths", Score: 45},
//	        {Subject: "Science", Score: 72},
//	    },
//	})
//
// Scores preserve the insertion order of subjects, so every walk over a
// profile (weak-subject selection, display) is deterministic:
//
//	for _, ss := range profile.Scores {
//	    if ss.Score.IsWeak() {
//	        // subject needs attention
//	    }
//	}
//
// # Repositories
//
// The package defines the repository interfaces (implemented in
// infrastructure/persistence):
//
//   - Repository: CRUD, listing, and class-average analytics
//   - Cache: profile caching between chat turns
package student
