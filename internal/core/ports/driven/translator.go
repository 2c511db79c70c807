package driven

import "context"

// Translator converts text between languages identified by ISO 639-1 codes.
// Translating to the same language returns the text unchanged.
// Unsupported pairs return domain.ErrTranslationUnavailable.
type Translator interface {
	Translate(ctx context.Context, text, src, tgt string) (string, error)
}
