package services

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
	"github.com/custodia-labs/pelagia/internal/diagrams"
)

// flowDirections converts the allowed directions for the In rule.
func flowDirections() []any {
	out := make([]any, len(diagrams.FlowDirections))
	for i, d := range diagrams.FlowDirections {
		out[i] = d
	}
	return out
}

// ValidateBuildRequest checks a build request before any work is done.
// Zero Jobs and TOCDepth are allowed and mean "use the default".
func ValidateBuildRequest(req driving.BuildRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Folder, validation.Required),
		validation.Field(&req.Start, validation.Required),
		validation.Field(&req.Output, validation.Required),
		validation.Field(&req.Width, validation.Required, validation.Min(1)),
		validation.Field(&req.Height, validation.Required, validation.Min(1)),
		validation.Field(&req.Scale, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&req.FlowDirection, validation.In(flowDirections()...)),
		validation.Field(&req.Jobs, validation.Min(1)),
		validation.Field(&req.RenderTimeout, validation.Min(time.Duration(0))),
		validation.Field(&req.TOCDepth, validation.Min(1), validation.Max(6)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// ValidateCheckRequest checks a check request.
func ValidateCheckRequest(req driving.CheckRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Folder, validation.Required),
		validation.Field(&req.Start, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
