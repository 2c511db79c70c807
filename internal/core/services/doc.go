// Package services implements the driving port interfaces.
//
// DialogueService, SummaryService, IngestService and Retriever hold the
// triage engine. They reach the outside world only through driven ports,
// so every provider, index and report backend is swappable in tests.
// SettingsService reads and validates the persisted configuration.
package services
