package parsing

// Scope controls how much of the source text a task searches.
type Scope string

const (
	// ScopeFirstSection limits the search to the heuristic identity block
	// at the top of the resume.
	ScopeFirstSection Scope = "first_section"
	ScopeFullText     Scope = "full_text"
)

// Task is one extractive QA job against the resume text.
type Task struct {
	Question string
	Field    string
	Fallback string
	Scope    Scope
}

// Field names produced by the default task list.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldSkills     = "skills"
	FieldExperience = "experience"
	FieldEducation  = "education"
	FieldCurrentJob = "currentJob"
)

// DefaultTasks is the ordered extraction plan. Identity fields search only
// the first section; everything else searches the full text.
func DefaultTasks() []Task {
	return []Task{
		{
			Question: "What is the person's full name?",
			Field:    FieldName,
			Fallback: "Who is this resume about?",
			Scope:    ScopeFirstSection,
		},
		{
			Question: "What is the email address?",
			Field:    FieldEmail,
			Fallback: "How can this person be contacted by email?",
			Scope:    ScopeFirstSection,
		},
		{
			Question: "What is the phone number?",
			Field:    FieldPhone,
			Fallback: "What number can this person be reached at?",
			Scope:    ScopeFirstSection,
		},
		{
			Question: "What technical skills does the person have?",
			Field:    FieldSkills,
			Fallback: "What technologies and tools does the person know?",
			Scope:    ScopeFullText,
		},
		{
			Question: "What is the person's work experience?",
			Field:    FieldExperience,
			Fallback: "Where has the person worked and what did they do?",
			Scope:    ScopeFullText,
		},
		{
			Question: "What is the person's education background?",
			Field:    FieldEducation,
			Fallback: "What did the person study and where?",
			Scope:    ScopeFullText,
		},
		{
			Question: "What is the person's current job title?",
			Field:    FieldCurrentJob,
			Fallback: "What does the person do now?",
			Scope:    ScopeFullText,
		},
	}
}
