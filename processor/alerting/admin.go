package alerting

import (
	"context"
	"strings"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/natsclient"
)

// Administrative cache-control subjects. The clear subject takes the
// customer id as the message payload; clearall ignores its payload and
// drops the entire process-local tier.
const (
	AdminClearCustomerSubject = "vitalstream.admin.cache.clear"
	AdminClearAllSubject      = "vitalstream.admin.cache.clearall"
)

// RegisterAdminSubjects wires the engine's cache-control operations to
// NATS subjects so operators can invalidate rule caches without a
// restart. Subscriptions live until the context is cancelled.
func (e *Engine) RegisterAdminSubjects(ctx context.Context, nc *natsclient.Client) error {
	if nc == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Engine", "RegisterAdminSubjects",
			"nats client is required")
	}

	err := nc.Subscribe(ctx, AdminClearCustomerSubject, func(ctx context.Context, data []byte) {
		customerID := strings.TrimSpace(string(data))
		if customerID == "" {
			e.logger.Warn("cache clear request without customer id")
			return
		}
		e.ClearCustomerCache(ctx, customerID)
	})
	if err != nil {
		return errors.Wrap(err, "Engine", "RegisterAdminSubjects", "clear subscription")
	}

	err = nc.Subscribe(ctx, AdminClearAllSubject, func(context.Context, []byte) {
		e.ClearLocalCache()
	})
	if err != nil {
		return errors.Wrap(err, "Engine", "RegisterAdminSubjects", "clearall subscription")
	}

	e.logger.Info("admin cache subjects registered",
		"clear", AdminClearCustomerSubject, "clearall", AdminClearAllSubject)
	return nil
}
