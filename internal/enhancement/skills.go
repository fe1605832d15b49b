package enhancement

import "strings"

// skillCategoryLabels is the fixed vocabulary skills are classified against.
var skillCategoryLabels = []string{
	"Frontend",
	"Backend",
	"Database",
	"DevOps",
	"Mobile",
	"Data Science",
	"Cloud",
	"Programming Language",
}

// relatedSkills maps well-known skills to commonly co-occurring ones.
var relatedSkills = map[string][]string{
	"javascript": {"TypeScript", "React", "Node.js"},
	"typescript": {"JavaScript", "React", "Node.js"},
	"react":      {"Redux", "Next.js", "TypeScript"},
	"node.js":    {"Express", "MongoDB", "TypeScript"},
	"python":     {"Django", "Flask", "Pandas"},
	"django":     {"Python", "PostgreSQL", "Redis"},
	"java":       {"Spring", "Hibernate", "Maven"},
	"spring":     {"Java", "Hibernate", "PostgreSQL"},
	"go":         {"Docker", "Kubernetes", "gRPC"},
	"docker":     {"Kubernetes", "CI/CD", "Linux"},
	"kubernetes": {"Docker", "Helm", "Terraform"},
	"aws":        {"Terraform", "Docker", "CloudFormation"},
	"terraform":  {"AWS", "Kubernetes", "Ansible"},
	"postgresql": {"SQL", "Redis", "Docker"},
	"mysql":      {"SQL", "PHP", "Redis"},
	"mongodb":    {"Node.js", "Express", "Redis"},
	"sql":        {"PostgreSQL", "MySQL", "Data Modeling"},
	"c#":         {".NET", "Azure", "SQL Server"},
	"php":        {"Laravel", "MySQL", "JavaScript"},
	"swift":      {"iOS", "Xcode", "Objective-C"},
	"kotlin":     {"Android", "Java", "Gradle"},
	"flutter":    {"Dart", "Firebase", "Android"},
	"vue":        {"JavaScript", "Nuxt", "TypeScript"},
	"angular":    {"TypeScript", "RxJS", "Node.js"},
	"pandas":     {"Python", "NumPy", "Jupyter"},
	"tensorflow": {"Python", "Keras", "NumPy"},
	"pytorch":    {"Python", "NumPy", "CUDA"},
}

// SuggestSkills returns related skills the candidate does not already list.
func SuggestSkills(skills []string) []string {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[normalizeSkill(s)] = true
	}

	var suggestions []string
	seen := map[string]bool{}
	for _, s := range skills {
		for _, related := range relatedSkills[normalizeSkill(s)] {
			key := normalizeSkill(related)
			if have[key] || seen[key] {
				continue
			}
			seen[key] = true
			suggestions = append(suggestions, related)
		}
	}
	return suggestions
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
