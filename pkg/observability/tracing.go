package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer annotates X-Ray segments for ledger operations. On Lambda the
// runtime opens the root segment, so every helper tolerates a missing
// segment and becomes a no-op outside a traced context.
type Tracer struct {
	service string
}

func NewTracer(service string) *Tracer {
	return &Tracer{service: service}
}

// Capture runs a ledger operation inside its own subsegment, recording
// the error if the operation fails.
func (t *Tracer) Capture(ctx context.Context, operation string, fn func(context.Context) error) error {
	return xray.Capture(ctx, t.service+"."+operation, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			if seg := xray.GetSegment(ctx); seg != nil {
				seg.AddError(err)
			}
		}
		return err
	})
}

// AddAnnotation attaches an indexed annotation to the active segment
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// RecordError attaches an error to the active segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}
