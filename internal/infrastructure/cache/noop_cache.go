package cache

import (
	"context"
	"time"

	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// NoopCache never stores anything; it backs cache.driver=none.
type NoopCache struct{}

var _ ports.Cache = NoopCache{}

func (NoopCache) Get(context.Context, string) (string, bool, error)         { return "", false, nil }
func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                     { return nil }
