// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// AnswerReceived carries a completed query result back to the model.
type AnswerReceived struct {
	Result *domain.QueryResult
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
