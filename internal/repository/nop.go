package repository

import (
	"context"

	"github.com/maxviazov/soccer-scout-service/internal/model"
)

// NopQueryLog discards entries. It backs the "none" driver.
type NopQueryLog struct{}

func (NopQueryLog) Ping(context.Context) error { return nil }
func (NopQueryLog) Record(context.Context, model.QueryLogEntry) error { return nil }
func (NopQueryLog) Close() error { return nil }

func (NopQueryLog) Recent(context.Context, Page) (PageResult[model.QueryLogEntry], error) {
	return PageResult[model.QueryLogEntry]{Items: []model.QueryLogEntry{}}, nil
}

var _ QueryLogRepository = NopQueryLog{}
