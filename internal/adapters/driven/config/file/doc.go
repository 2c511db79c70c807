// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under the triage home.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: User-editable prompt templates with embedded defaults
//   - LanguageCatalog loading: optional YAML list of languages and disclaimers
package file
