// Package stats derives dashboard metrics and follow-up queues from the
// record store. Every computation is a read-only snapshot taken at call
// time; nothing is cached or maintained incrementally.
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jvaldes/apptrack/internal/tracker/domain"
	"github.com/jvaldes/apptrack/internal/tracker/storage"
)

// noResponseThresholdDays is how long an application may stay in Applied
// before it counts as unanswered.
const noResponseThresholdDays = 14

// DefaultFollowUpWindowDays is the horizon for upcoming follow-ups when the
// caller does not specify one.
const DefaultFollowUpWindowDays = 7

// Dashboard aggregates the tracker's headline numbers.
type Dashboard struct {
	Total                int                   `json:"total"`
	CountsByStatus       map[domain.Status]int `json:"countsByStatus"`
	RespondedCount       int                   `json:"respondedCount"`
	ResponseRate         float64               `json:"responseRate"`
	ThisWeekCount        int                   `json:"thisWeekCount"`
	ThisMonthCount       int                   `json:"thisMonthCount"`
	AverageResponseDays  float64               `json:"averageResponseDays"`
	PendingFollowUps     int                   `json:"pendingFollowUps"`
	NoResponseOver14Days int                   `json:"noResponseOver14Days"`
}

// Engine computes statistics over the record store.
type Engine struct {
	store *storage.Store
	now   func() time.Time
}

// NewEngine creates a statistics engine. The clock is injectable through
// NewEngineWithClock for tests.
func NewEngine(store *storage.Store) *Engine {
	return NewEngineWithClock(store, time.Now)
}

// NewEngineWithClock creates a statistics engine with a fixed clock source.
func NewEngineWithClock(store *storage.Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// Dashboard computes all dashboard aggregates in one pass over the current
// records. "Today" is evaluated once so the sub-metrics agree with each
// other within a single call.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	apps, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(e.now())
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)
	staleLimit := today.AddDate(0, 0, -noResponseThresholdDays)

	d := &Dashboard{
		Total:          len(apps),
		CountsByStatus: make(map[domain.Status]int, len(domain.AllStatuses)),
	}
	for _, st := range domain.AllStatuses {
		d.CountsByStatus[st] = 0
	}

	var responseDaysSum float64
	var responseDaysN int

	for _, app := range apps {
		d.CountsByStatus[app.Status]++

		if app.Status.Responded() {
			d.RespondedCount++
		}

		if !app.ApplicationDate.Before(weekAgo) {
			d.ThisWeekCount++
		}
		if !app.ApplicationDate.Before(monthAgo) {
			d.ThisMonthCount++
		}

		if app.ResponseDate != nil {
			responseDaysSum += app.ResponseDate.Sub(app.ApplicationDate).Hours() / 24
			responseDaysN++
		}

		if app.FollowUpDate != nil && !app.FollowUpDate.After(today) && app.Status.Active() {
			d.PendingFollowUps++
		}

		if app.Status == domain.StatusApplied && !app.ApplicationDate.After(staleLimit) {
			d.NoResponseOver14Days++
		}
	}

	if d.Total > 0 {
		d.ResponseRate = round1(float64(d.RespondedCount) / float64(d.Total) * 100)
	}
	if responseDaysN > 0 {
		d.AverageResponseDays = round1(responseDaysSum / float64(responseDaysN))
	}

	return d, nil
}

// UpcomingFollowUps returns active applications whose follow-up date falls
// on or before today+withinDays, ordered by follow-up date ascending.
func (e *Engine) UpcomingFollowUps(ctx context.Context, withinDays int) ([]domain.Application, error) {
	if withinDays <= 0 {
		withinDays = DefaultFollowUpWindowDays
	}

	apps, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(e.now())
	limit := today.AddDate(0, 0, withinDays)

	var due []domain.Application
	for _, app := range apps {
		if app.FollowUpDate == nil || !app.Status.Active() {
			continue
		}
		if !app.FollowUpDate.After(limit) {
			due = append(due, app)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].FollowUpDate.Before(*due[j].FollowUpDate)
	})

	return due, nil
}

func (e *Engine) snapshot(ctx context.Context) ([]domain.Application, error) {
	return e.store.List(ctx, storage.Filter{})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
