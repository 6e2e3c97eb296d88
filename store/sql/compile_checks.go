package sqlstore

import "github.com/goliatone/go-payzcore/webhooks"

var _ webhooks.DeliveryLedger = (*WebhookDeliveryStore)(nil)
