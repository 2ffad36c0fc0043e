package anthropic

import (
	"bytes"
	"fmt"
	"text/template"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPT TEMPLATES
// Each operation has a fixed system prompt and a templated user prompt.
// Templates that expect structured output spell the JSON schema out and
// forbid surrounding prose; the mapper still tolerates fenced output.
// ══════════════════════════════════════════════════════════════════════════════

const referenceSystemPrompt = `You are a study material recommender for government school students in grades 1 to 10.
You recommend free educational YouTube videos from reputable channels such as Khan Academy, BYJU'S and Vedantu.
You respond with exactly one URL and nothing else. No titles, no descriptions, no markdown.`

var referenceUserTmpl = template.Must(template.New("reference").Parse(
	`Recommend one YouTube tutorial video that teaches {{.Subject}} to a school student.
The video must be in {{.Language}} or have {{.Language}} subtitles.
Reply with the full video URL only, in the form https://www.youtube.com/watch?v=VIDEO_ID`))

type referencePromptData struct {
	Subject  string
	Language string
}

const quizSystemPrompt = `You are a question paper generator for government school students in grades 1 to 10.
You produce assessments with two sections: multiple choice questions with options A to D, and open scenario questions that test applied understanding.
You always respond with a single JSON object and nothing else.`

var quizUserTmpl = template.Must(template.New("quiz").Parse(
	`Create an assessment for a grade {{.Grade}} student on the subject "{{.Subject}}" in {{.Language}}.
{{.Difficulty}}

The assessment must contain exactly {{.PerSection}} multiple choice questions and exactly {{.PerSection}} scenario questions.

Respond with JSON in exactly this shape:
{
  "multiple_choice": [
    {"number": 1, "question": "...", "options": {"A": "...", "B": "...", "C": "...", "D": "..."}, "correct_answer": "A"}
  ],
  "scenarios": [
    {"number": 1, "question": "..."}
  ]
}

Rules:
- number runs 1 to {{.PerSection}} in each section.
- every multiple choice question has all four options A, B, C, D and one correct_answer.
- scenario questions describe a real situation the student reasons about in a few sentences.
- all question text is in {{.Language}}.`))

type quizPromptData struct {
	Subject    string
	Grade      int
	Language   string
	Difficulty string
	PerSection int
}

const evaluationSystemPrompt = `You are an answer evaluator for school assessments.
You grade open scenario answers fairly and encouragingly, award points in steps of 5 from 0 to 20, and always respond with a single JSON object and nothing else.`

var evaluationUserTmpl = template.Must(template.New("evaluation").Parse(
	`Grade the scenario answers of a grade {{.Grade}} student for the subject "{{.Subject}}".
Each answer is worth 0 to 20 points. Award points only from this ladder:
- 20: complete and correct understanding
- 15: mostly correct with minor gaps
- 10: partially correct
- 5: a relevant attempt with major gaps
- 0: wrong, empty or off-topic

{{range .Answers}}Question {{.Number}}: {{.Question}}
Student answer: {{.Answer}}

{{end}}Respond with JSON in exactly this shape:
{
  "grades": [
    {"number": 1, "points": 15, "comment": "..."}
  ]
}

Rules:
- one grade entry per question, number matching the question number.
- points must be one of 0, 5, 10, 15, 20.
- comment is one short encouraging sentence naming what was right or missing.`))

type evaluationPromptData struct {
	Subject string
	Grade   int
	Answers []scenarioAnswerData
}

type scenarioAnswerData struct {
	Number   int
	Question string
	Answer   string
}

const tutorSystemPrompt = `You are a patient, encouraging tutor for government school students in grades 1 to 10.
You explain concepts step by step in simple, age-appropriate language, using everyday examples.
You answer in the language the student writes in, or the language they ask for, including Hindi, Tamil, Telugu and Kannada.
You never criticize. When an answer is wrong you say "Not quite, let's try another way!" and explain differently.
After explaining a concept you offer two or three short practice problems, easiest first.`

// renderTemplate executes a prompt template into a string.
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
