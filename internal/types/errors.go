package types

import "errors"

// Domain specific errors for the planning and review pipelines.
var (
	ErrIntentParse     = errors.New("failed to parse user request")
	ErrGenerationParse = errors.New("failed to parse generated plan")
	ErrRetryExhausted  = errors.New("plan generation attempts exhausted")
	ErrNoPlan          = errors.New("no plan produced")
	ErrEmptyCompletion = errors.New("empty response from AI")
	ErrBadRequest      = errors.New("bad request")
)
