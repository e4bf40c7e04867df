package tz

import "context"

// key is an unexported type for keys defined in this package. This prevents
// collisions with keys defined in other packages.
type key int

// dbKey is the key for Provider values in Contexts. It is unexported;
// clients use ContextWithDatabase and DatabaseFromContext instead of using
// this key directly.
const dbKey key = 0

// ContextWithDatabase returns a new Context that carries db.
func ContextWithDatabase(ctx context.Context, db Provider) context.Context {
	if db == nil {
		return ctx
	}
	return context.WithValue(ctx, dbKey, db)
}

// DatabaseFromContext returns the Provider stored in ctx or System().
func DatabaseFromContext(ctx context.Context) Provider {
	db, ok := ctx.Value(dbKey).(Provider)
	if ok {
		return db
	}
	return System()
}
