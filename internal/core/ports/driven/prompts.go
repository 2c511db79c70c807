package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptFollowUp asks for exactly one triage question.
	// The template expects two %s placeholders: patient input, then context passages.
	PromptFollowUp = "followup"

	// PromptSummary turns a transcript into a physician summary.
	// The template expects one %s placeholder for the transcript.
	PromptSummary = "summary"

	// PromptTranslate translates text with the LLM.
	// The template expects %s placeholders: source language, target language, text.
	PromptTranslate = "translate"
)
