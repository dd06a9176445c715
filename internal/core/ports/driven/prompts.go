package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system prompt for grounded answers.
	// No format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerContext wraps the retrieved passages.
	// Expects a single %s placeholder for the numbered passages.
	PromptAnswerContext = "answer_context"

	// PromptNoContext is used when retrieval found nothing and the
	// no-context notice is enabled. No format placeholders.
	PromptNoContext = "no_context"
)
