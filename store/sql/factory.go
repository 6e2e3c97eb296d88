package sqlstore

import (
	"fmt"

	"github.com/uptrace/bun"
)

// Stores bundles the bun-backed payzcore stores sharing one database.
type Stores struct {
	DB         *bun.DB
	Deliveries *WebhookDeliveryStore
}

// NewStores accepts a *bun.DB or anything exposing DB() *bun.DB, such as a
// go-persistence-bun client.
func NewStores(source any) (*Stores, error) {
	db, err := resolveBunDB(source)
	if err != nil {
		return nil, err
	}
	deliveries, err := NewWebhookDeliveryStore(db)
	if err != nil {
		return nil, err
	}
	return &Stores{DB: db, Deliveries: deliveries}, nil
}

func resolveBunDB(source any) (*bun.DB, error) {
	var db *bun.DB
	switch typed := source.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: database is required")
	case *bun.DB:
		db = typed
	case interface{ DB() *bun.DB }:
		db = typed.DB()
	default:
		return nil, fmt.Errorf("sqlstore: unsupported database source %T", source)
	}
	if db == nil {
		return nil, fmt.Errorf("sqlstore: database source returned nil bun db")
	}
	return db, nil
}
