// Package postgres implements the PostgreSQL persistence layer for Study Buddy.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001
-- Purpose: Student profiles with per-subject scores

-- Main students table. Roll number is the natural key students use
-- when talking to the bot, so it is the primary key directly.
CREATE TABLE IF NOT EXISTS students (
    roll_no INTEGER PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    grade INTEGER NOT NULL,
    language VARCHAR(20) NOT NULL DEFAULT 'english',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Scores as a JSONB array of {"subject", "score"} entries.
    -- An array, not an object: subject insertion order must survive
    -- round-trips so weak-subject selection stays deterministic.
    scores JSONB NOT NULL DEFAULT '[]'::jsonb,

    -- Constraints for data integrity
    CONSTRAINT valid_roll_no CHECK (roll_no > 0),
    CONSTRAINT valid_grade CHECK (grade >= 1 AND grade <= 10),
    CONSTRAINT valid_language CHECK (language IN ('english', 'hindi', 'tamil', 'telugu', 'kannada', 'marathi', 'bengali')),
    CONSTRAINT scores_is_array CHECK (jsonb_typeof(scores) = 'array')
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_students_grade ON students(grade);
CREATE INDEX IF NOT EXISTS idx_students_name ON students(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_students_created_at ON students(created_at DESC);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

-- Apply trigger to students table
DROP TRIGGER IF EXISTS update_students_updated_at ON students;
CREATE TRIGGER update_students_updated_at
    BEFORE UPDATE ON students
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_students_updated_at ON students;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE RECOMMENDATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create recommendations table
-- Version: 002
-- Purpose: Validated study material references per weak subject

CREATE TABLE IF NOT EXISTS recommendations (
    id SERIAL PRIMARY KEY,
    roll_no INTEGER NOT NULL REFERENCES students(roll_no) ON DELETE CASCADE,
    subject VARCHAR(50) NOT NULL,
    language VARCHAR(20) NOT NULL,
    reference TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Upsert key. Lowercased subject so 'Maths' and 'maths' address one
-- row; a later pipeline run overwrites the reference for the key.
CREATE UNIQUE INDEX IF NOT EXISTS idx_recommendations_key
    ON recommendations(roll_no, LOWER(subject), language);

CREATE INDEX IF NOT EXISTS idx_recommendations_roll_no ON recommendations(roll_no);
CREATE INDEX IF NOT EXISTS idx_recommendations_updated_at ON recommendations(updated_at ASC);
`

const migration002Down = `
DROP TABLE IF EXISTS recommendations;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE TEST RESULTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create test_results table
-- Version: 003
-- Purpose: Append-only history of evaluated skill tests

CREATE TABLE IF NOT EXISTS test_results (
    id SERIAL PRIMARY KEY,
    roll_no INTEGER NOT NULL REFERENCES students(roll_no) ON DELETE CASCADE,
    subject VARCHAR(50) NOT NULL,
    quiz_score INTEGER NOT NULL,
    evaluated_score INTEGER NOT NULL,
    total_score INTEGER NOT NULL,
    test_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_quiz_score CHECK (quiz_score >= 0 AND quiz_score <= 100),
    CONSTRAINT valid_evaluated_score CHECK (evaluated_score >= 0 AND evaluated_score <= 100),
    CONSTRAINT valid_total_score CHECK (total_score >= 0 AND total_score <= 100)
);

CREATE INDEX IF NOT EXISTS idx_test_results_student ON test_results(roll_no, test_date DESC);
CREATE INDEX IF NOT EXISTS idx_test_results_subject ON test_results(roll_no, LOWER(subject), test_date DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS test_results;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE TEACHERS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create teachers table
-- Version: 004
-- Purpose: Teacher profiles with the grades they teach

CREATE TABLE IF NOT EXISTS teachers (
    staff_id INTEGER PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    subject VARCHAR(50) NOT NULL,
    grades JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_staff_id CHECK (staff_id > 0),
    CONSTRAINT grades_is_array CHECK (jsonb_typeof(grades) = 'array')
);

CREATE INDEX IF NOT EXISTS idx_teachers_subject ON teachers(LOWER(subject));
`

const migration004Down = `
DROP TABLE IF EXISTS teachers;
`
