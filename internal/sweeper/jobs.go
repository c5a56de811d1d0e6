package sweeper

import (
	"context"
	"time"
)

type subscriptionDowngrader interface {
	DowngradeExpired(ctx context.Context, now time.Time) (int, error)
}

type notificationPurger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int, error)
}

// SubscriptionLabels rewrites stored SUPPORTER labels whose expiry has passed.
// Limits never depend on this job; the resolver already treats them as FREE.
func SubscriptionLabels(spec string, profiles subscriptionDowngrader) Job {
	return Job{
		Name: "subscription_labels",
		Spec: spec,
		Run: func(ctx context.Context) (int, error) {
			return profiles.DowngradeExpired(ctx, time.Now())
		},
	}
}

// NotificationRetention deletes read notifications older than retention.
func NotificationRetention(spec string, retention time.Duration, notifications notificationPurger) Job {
	return Job{
		Name: "notification_retention",
		Spec: spec,
		Run: func(ctx context.Context) (int, error) {
			return notifications.PurgeRead(ctx, retention)
		},
	}
}
