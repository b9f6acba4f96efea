package instrument

import "context"

type correlationKey struct{}

// SetCorrelationID returns a copy of ctx carrying the correlation ID.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cID)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "" when absent.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	cID, _ := ctx.Value(correlationKey{}).(string)
	return cID
}

// EnsureCorrelationID returns ctx unchanged when it already carries a correlation ID,
// otherwise it stores fallback. Message consumers use it to continue a producer's trail.
func EnsureCorrelationID(ctx context.Context, fallback string) context.Context {
	if GetCorrelationID(ctx) != "" || fallback == "" {
		return ctx
	}
	return SetCorrelationID(ctx, fallback)
}
