package prompts

// PlanContext is everything the generator is told about one lesson.
// Missing fields render empty strings (templates use missingkey=zero).
type PlanContext struct {
	Day     string `json:"day"`
	Date    string `json:"date"`
	Week    string `json:"week"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	Targets string `json:"targets"`
	// Resolved against the games catalog
	GameName        string `json:"gameName"`
	GameDescription string `json:"gameDescription"`
	// Spiral review
	SpiralOldest string `json:"spiralOldest"`
	SpiralRecent string `json:"spiralRecent"`
	Song         string `json:"song"`
	Teacher      string `json:"teacher"`
	Class        string `json:"class"`
}

// Values flattens the context into template placeholders.
func (c PlanContext) Values() map[string]string {
	return map[string]string{
		"day":             c.Day,
		"date":            c.Date,
		"week":            c.Week,
		"subject":         c.Subject,
		"content":         c.Content,
		"targets":         c.Targets,
		"gameName":        c.GameName,
		"gameDescription": c.GameDescription,
		"spiralOldest":    c.SpiralOldest,
		"spiralRecent":    c.SpiralRecent,
		"song":            c.Song,
		"teacher":         c.Teacher,
		"class":           c.Class,
	}
}
