// Package repository defines where the stats snapshot is persisted between runs.
package repository

import (
	"context"
	"errors"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

var ErrSnapshotNotFound = errors.New("stats snapshot not found")

type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, season int) (*models.StatsSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.StatsSnapshot) error
}
