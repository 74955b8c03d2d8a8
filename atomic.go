package ledger

import (
	"context"

	"github.com/alium-swap/ledger/errors"
)

// Atomic executes fn on a cache wrap of db. All changes are written to db
// only if fn succeeds, otherwise they are discarded and the database is left
// untouched.
//
// Events that fn emits through the context are buffered and published to the
// context sink after a successful write. A panic inside fn is recovered and
// returned as ErrPanic.
func Atomic(ctx context.Context, db CacheableKVStore, fn func(context.Context, KVCacheWrap) error) (err error) {
	cache := db.CacheWrap()
	buf := NewEventBuffer()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrPanic, "%v", r)
		}
		if err != nil {
			cache.Discard()
			return
		}
		buf.FlushTo(GetEventSink(ctx))
	}()

	if err = fn(WithEventSink(ctx, buf), cache); err != nil {
		return err
	}
	return cache.Write()
}
