package commands

import (
	"context"
	"slices"

	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
)

// changeTracker is implemented by units of work that record every shipment
// written inside them.
type changeTracker interface {
	TrackedNumbers() []shipment.TrackingNumber
}

// changeNotifier runs the post-commit side effects of a mutation.
// Cached read models are invalidated before the events are published, so a
// subscriber re-reading right after a push never gets the pre-mutation snapshot.
type changeNotifier struct {
	cache     ports.Cache
	publisher ports.EventPublisher
}

// shipmentChanged invalidates the snapshot of number and of every other shipment
// the committed unit of work wrote, then the analytics, then publishes events.
func (n changeNotifier) shipmentChanged(
	ctx context.Context,
	uow ShipmentUoW,
	number shipment.TrackingNumber,
	events ...shipment.Event,
) {
	// the mutation is committed; a cancelled request must not skip invalidation
	ctx = context.WithoutCancel(ctx)

	for _, written := range writtenNumbers(uow, number) {
		n.cache.Invalidate(ctx, queries.TrackingCacheKey(written))
	}
	n.cache.InvalidateByPrefix(ctx, queries.AnalyticsCachePrefix)

	if len(events) > 0 {
		n.publisher.Publish(ctx, number, events...)
	}
}

func writtenNumbers(uow ShipmentUoW, number shipment.TrackingNumber) []shipment.TrackingNumber {
	numbers := []shipment.TrackingNumber{number}

	tracker, ok := uow.(changeTracker)
	if !ok {
		return numbers
	}
	for _, written := range tracker.TrackedNumbers() {
		if !slices.Contains(numbers, written) {
			numbers = append(numbers, written)
		}
	}
	return numbers
}
