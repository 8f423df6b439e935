package conversation

import "errors"

// Sentinel errors for conversation flows. Provider faults carry the
// provider package's sentinels, extraction faults extract.ErrExtraction;
// transports classify with errors.Is.
var (
	// ErrValidation indicates missing required input. Raised before any
	// collaborator call; a client fault, not a server fault.
	ErrValidation = errors.New("conversation: invalid request")
)
