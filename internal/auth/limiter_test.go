package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter_DisabledOrWithoutRedis(t *testing.T) {
	ctx := context.Background()

	for name, l := range map[string]*RedisLimiter{
		"disabled": NewRedisLimiter(nil, 0, time.Minute),
		"no redis": NewRedisLimiter(nil, 3, time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, l.Failure(ctx, "ann@x.com"))
			}
			ok, err := l.Allow(ctx, "ann@x.com")
			require.NoError(t, err)
			assert.True(t, ok, "limiter fails open")
			assert.NoError(t, l.Reset(ctx, "ann@x.com"))
		})
	}
}

func TestRedisLimiter_KeyIsCaseInsensitive(t *testing.T) {
	l := NewRedisLimiter(nil, 3, time.Minute)
	assert.Equal(t, l.key("Ann@X.com"), l.key("ann@x.com"))
	assert.Equal(t, "login_fail:ann@x.com", l.key("ann@x.com"))
}

func TestNopLimiter(t *testing.T) {
	var l LoginLimiter = NopLimiter{}
	ok, err := l.Allow(context.Background(), "x")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Failure(context.Background(), "x"))
	assert.NoError(t, l.Reset(context.Background(), "x"))
}
