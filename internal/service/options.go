package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"userauth/internal/auth"
	"userauth/internal/events"
	"userauth/internal/model"
)

const defaultUserCacheTTL = 5 * time.Minute

type options struct {
	logger           *zap.Logger
	publisher        events.Publisher
	limiter          auth.LoginLimiter
	unifyLoginErrors bool
	userCacheTTL     time.Duration
}

// Option configures optional collaborators of the services.
type Option func(*options)

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventPublisher publishes user lifecycle events after committed writes.
func WithEventPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithLoginLimiter enables lockout after repeated failed logins.
func WithLoginLimiter(l auth.LoginLimiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithUnifiedLoginErrors reports both unknown email and wrong password as
// ErrInvalidCredentials.
func WithUnifiedLoginErrors(unify bool) Option {
	return func(o *options) { o.unifyLoginErrors = unify }
}

// WithUserCacheTTL sets how long fetched users stay cached.
func WithUserCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.userCacheTTL = ttl
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       zap.NewNop(),
		publisher:    events.NopPublisher{},
		limiter:      auth.NopLimiter{},
		userCacheTTL: defaultUserCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.publisher == nil {
		o.publisher = events.NopPublisher{}
	}
	if o.limiter == nil {
		o.limiter = auth.NopLimiter{}
	}
	return o
}

// publish sends a user event. Failures are logged, never returned: the write
// has already been committed.
func (o *options) publish(ctx context.Context, eventType string, user *model.User) {
	if err := o.publisher.Publish(ctx, events.NewEvent(eventType, user)); err != nil {
		o.logger.Warn("publish user event",
			zap.String("type", eventType),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
