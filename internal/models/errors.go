package models

import "fmt"

// Collaborator names an external dependency of the core pipeline.
type Collaborator string

const (
	CollaboratorExtract Collaborator = "extract"
	CollaboratorLLM     Collaborator = "llm"
	CollaboratorStore   Collaborator = "store"
)

// ExternalError tags a failure from a collaborator (PDF extraction, LLM
// call, persistent store) so it can be told apart from the core's own
// configuration errors. The underlying error is passed through unmodified.
type ExternalError struct {
	Collaborator Collaborator
	Err          error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func NewExternalError(c Collaborator, err error) *ExternalError {
	return &ExternalError{Collaborator: c, Err: err}
}
