package handler

import (
	"log/slog"

	"github.com/jvaldes/apptrack/internal/tracker/stats"
	"github.com/jvaldes/apptrack/internal/tracker/storage"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger *slog.Logger
	Store  *storage.Store
	Stats  *stats.Engine
}

// ApplicationHandler handles application CRUD HTTP requests
type ApplicationHandler struct {
	logger *slog.Logger
	store  *storage.Store
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// StatsHandler handles dashboard and follow-up HTTP requests
type StatsHandler struct {
	logger *slog.Logger
	stats  *stats.Engine
}

// NewStatsHandler creates a new StatsHandler instance
func NewStatsHandler(deps *Dependencies) *StatsHandler {
	return &StatsHandler{
		logger: deps.Logger,
		stats:  deps.Stats,
	}
}

// TransferHandler handles CSV export and import
type TransferHandler struct {
	logger *slog.Logger
	store  *storage.Store
}

// NewTransferHandler creates a new TransferHandler instance
func NewTransferHandler(deps *Dependencies) *TransferHandler {
	return &TransferHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}
