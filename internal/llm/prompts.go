package llm

import (
	_ "embed"
	"strings"
)

const DefaultMaxTokens = 4096

var (
	//go:embed prompts/instructions.txt
	defaultInstructions string
	//go:embed prompts/system.txt
	systemPrompt string
	//go:embed prompts/output.txt
	outputContract string
)

// DefaultInstructions returns the analysis template used when a user has no override.
func DefaultInstructions() string {
	return strings.TrimSpace(defaultInstructions)
}

// PromptInput is everything that goes into one analysis prompt.
type PromptInput struct {
	Instructions string
	ResumeText   string
	JobText      string
	JobSource    string
	Questions    string
	MaxTokens    int
}

// BuildRequest renders the analysis prompt. Blank instructions fall back to
// DefaultInstructions and blank questions render as "None".
func BuildRequest(in PromptInput) Request {
	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		instructions = DefaultInstructions()
	}
	questions := strings.TrimSpace(in.Questions)
	if questions == "" {
		questions = "None"
	}

	var b strings.Builder
	b.WriteString("# Analysis Instructions\n")
	b.WriteString(instructions)
	b.WriteString("\n\n# Input Data\n")
	b.WriteString("Job Post: ")
	b.WriteString(strings.TrimSpace(in.JobText))
	b.WriteString("\n")
	if source := strings.TrimSpace(in.JobSource); source != "" {
		b.WriteString("Job Source: ")
		b.WriteString(source)
		b.WriteString("\n")
	}
	b.WriteString("Resume: ")
	b.WriteString(strings.TrimSpace(in.ResumeText))
	b.WriteString("\n")
	b.WriteString("Custom Questions: ")
	b.WriteString(questions)
	b.WriteString("\n\n")
	b.WriteString("Provide a comprehensive analysis following the structure outlined in the instructions above. ")
	b.WriteString("Use specific evidence from the resume and the job posting.\n\n")
	b.WriteString(strings.TrimSpace(outputContract))

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return Request{
		System:    strings.TrimSpace(systemPrompt),
		Prompt:    b.String(),
		MaxTokens: maxTokens,
	}
}
