package ports

import (
	"context"

	"tracking/internal/core/domain/model/eta"
)

// ETAOracle is the external prediction service.
// Implementations must honour ctx cancellation: the caller bounds every call with a deadline.
// Any error, including a malformed answer, makes the caller fall back to the formula.
type ETAOracle interface {
	Predict(ctx context.Context, req eta.Request) (eta.Estimate, error)
}
