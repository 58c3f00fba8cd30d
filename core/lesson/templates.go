package lesson

// Template pre-fills the content fields of a new lesson plan.
type Template struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Content Content `json:"content"`
}

var Templates = []Template{
	{
		Key:  "standard",
		Name: "Standard Lesson",
		Content: Content{
			Objectives:  "By the end of this lesson, students will be able to...",
			Methodology: "1. Introduction\n2. Direct Instruction\n3. Practice",
			Evaluation:  "Exit Ticket",
		},
	},
	{
		Key:  "science_lab",
		Name: "Science Lab",
		Content: Content{
			Objectives:  "Test the hypothesis that...",
			Methodology: "1. Safety Briefing\n2. Experiment\n3. Data Collection",
			Evaluation:  "Lab Report",
		},
	},
}
