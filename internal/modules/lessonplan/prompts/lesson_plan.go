package prompts

const PromptLessonPlan = "lesson_plan"

var lessonPlan = mustCompile(Spec{
	Name:       PromptLessonPlan,
	Version:    1,
	SchemaName: "lesson_plan",
	Schema:     PlanSchema,
	System: `
You write one daily lesson plan for an early-childhood classroom teacher.
Ground every section in the calendar content, learning targets and game provided.
Keep language concrete, age-appropriate and ready to read aloud.
Return JSON only.`,
	User: `
Teacher: {{.Teacher}}
Class: {{.Class}}
Day: {{.Day}}{{if .Date}} ({{.Date}}){{end}}{{if .Week}}
Week: {{.Week}}{{end}}

Subject: {{.Subject}}
Calendar content: {{.Content}}

Learning targets:
{{.Targets}}

Game: {{.GameName}}
Game description: {{.GameDescription}}

Spiral review (oldest in rotation): {{.SpiralOldest}}
Spiral review (recent): {{.SpiralRecent}}
Song of the week: {{.Song}}

Output rules:
- activityName: short title for the day's main activity.
- objectives: 2-4 "I can" statements drawn from the learning targets.
- materials: comma-separated list of what the teacher needs.
- introduction: 2-4 sentences that open the lesson and use the song or spiral review.
- activity: step-by-step main activity tied to the calendar content.
- game: how to run the game above, adapted to today's content.
- closure: 1-3 sentences to wrap up and check understanding.`,
	Validators: []Validator{
		RequireNonEmpty("Day", func(in PlanContext) string { return in.Day }),
		RequireNonEmpty("Subject", func(in PlanContext) string { return in.Subject }),
	},
})

// Build renders the lesson-plan prompt.
func Build(in PlanContext) (Prompt, error) {
	return lessonPlan.render(in)
}
