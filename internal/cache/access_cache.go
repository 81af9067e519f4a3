package cache

import "context"

// AccessCache stores resolved workspace roles keyed by user and
// workspace. Implementations are best-effort: a miss or a backend
// failure must never block resolution.
type AccessCache interface {
	Get(ctx context.Context, userID, workspaceID string) (string, bool)

	Put(ctx context.Context, userID, workspaceID, role string)

	// Invalidate drops a cached resolution. Membership and role
	// management live outside this service; whatever writes those
	// records is expected to call this so stale roles don't outlive
	// the TTL.
	Invalidate(ctx context.Context, userID, workspaceID string) error
}
