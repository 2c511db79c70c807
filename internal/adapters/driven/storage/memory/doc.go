// Package memory holds dialogue sessions for the lifetime of the process.
package memory
