package usecase

import (
	"context"
	"fmt"
	"time"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/platform"
	"autoroom/internal/infrastructure/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ReconcileUsecase interface {
	RunSweep(ctx context.Context) (Summary, error)
	SweepMonitoredRooms(ctx context.Context) (MonitoredSweepSummary, error)
	SweepCategories(ctx context.Context) (CategorySweepSummary, error)
}

// MonitoredSweepSummary — outcome of one pass over the monitored_room table
type MonitoredSweepSummary struct {
	Monitored    int `json:"monitored"`
	Outdated     int `json:"outdated"`
	Kept         int `json:"kept"`
	EmptyDeleted int `json:"emptyDeleted"`
	DeleteFailed int `json:"deleteFailed"`
	RowsRemoved  int `json:"rowsRemoved"`
}

// CategorySweepSummary — outcome of one pass over template categories
type CategorySweepSummary struct {
	Categories       int   `json:"categories"`
	Outdated         int   `json:"outdated"`
	Skipped          int   `json:"skipped"`
	TemplatesDeleted int64 `json:"templatesDeleted"`
	Recovered        int64 `json:"recovered"`
	ChildrenDeleted  int   `json:"childrenDeleted"`
	DeleteFailed     int   `json:"deleteFailed"`
}

type Summary struct {
	SweepID    string                `json:"sweepId"`
	Monitored  MonitoredSweepSummary `json:"monitored"`
	Categories CategorySweepSummary  `json:"categories"`
}

type verdict uint8

const (
	verdictKeep verdict = iota
	verdictOutdated
	verdictEmpty
)

type roomCheck struct {
	room    model.MonitoredRoom
	verdict verdict
}

type categoryCheck struct {
	categoryID int64
	outdated   bool
	skipped    bool
	children   []model.Channel
}

type deletion struct {
	channelID int64
	err       error
}

// ReconcileUC repairs drift between the store and the platform. Both sweeps
// are idempotent and tolerate concurrent provisioning and reaping.
type ReconcileUC struct {
	gateway      platform.Gateway
	templateRepo repository.TemplateRepository
	roomRepo     repository.MonitoredRoomRepository
	stagingRepo  repository.GuestStagingRepository
	log          *zap.Logger

	// concurrency caps in-flight platform calls per sweep, 0 means no cap.
	concurrency int
}

func NewReconcileUC(
	gateway platform.Gateway,
	templateRepo repository.TemplateRepository,
	roomRepo repository.MonitoredRoomRepository,
	stagingRepo repository.GuestStagingRepository,
	concurrency int,
	log *zap.Logger,
) *ReconcileUC {
	return &ReconcileUC{
		gateway:      gateway,
		templateRepo: templateRepo,
		roomRepo:     roomRepo,
		stagingRepo:  stagingRepo,
		concurrency:  concurrency,
		log:          log,
	}
}

// RunSweep runs the monitored-room sweep, then the category sweep. A failing
// sweep does not prevent the other.
func (r *ReconcileUC) RunSweep(ctx context.Context) (Summary, error) {
	summary := Summary{SweepID: uuid.NewString()}
	ctx = withSweepLogger(ctx, r.log.With(zap.String("sweep_id", summary.SweepID)))

	monitored, monitoredErr := r.SweepMonitoredRooms(ctx)
	summary.Monitored = monitored

	categories, categoriesErr := r.SweepCategories(ctx)
	summary.Categories = categories

	return summary, errors.Join(monitoredErr, categoriesErr)
}

// RunPeriodic sweeps every interval until ctx is done.
func (r *ReconcileUC) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunSweep(ctx); err != nil {
				r.log.Error("periodic sweep", zap.Error(err))
			}
		}
	}
}

func (r *ReconcileUC) SweepMonitoredRooms(ctx context.Context) (MonitoredSweepSummary, error) {
	log := sweepLogger(ctx, r.log)
	var summary MonitoredSweepSummary

	rooms, err := r.roomRepo.AllMonitoredRooms(ctx)
	if err != nil {
		return summary, fmt.Errorf("sweep monitored rooms: %w", err)
	}
	summary.Monitored = len(rooms)
	log.Info("Starting monitored rooms sweep", zap.Int("monitored", len(rooms)))

	var outdated, empty []int64
	for check := range fanOut(ctx, r.concurrency, rooms, r.checkRoom) {
		switch check.verdict {
		case verdictOutdated:
			outdated = append(outdated, check.room.ChannelID)
		case verdictEmpty:
			empty = append(empty, check.room.ChannelID)
		default:
			summary.Kept++
		}
	}
	summary.Outdated = len(outdated)

	deleted := make([]int64, 0, len(empty))
	for res := range fanOut(ctx, r.concurrency, empty, r.deleteChannel) {
		if res.err != nil {
			summary.DeleteFailed++
			log.Error("delete empty room", zap.Int64("channel_id", res.channelID), zap.Error(res.err))
			continue
		}
		deleted = append(deleted, res.channelID)
	}
	summary.EmptyDeleted = len(deleted)

	remove := append(outdated, deleted...)
	n, err := r.roomRepo.DeleteMonitoredRoomsByIDs(ctx, remove)
	if err != nil {
		log.Error("remove monitored rooms", zap.Int("rows", len(remove)), zap.Error(err))
		return summary, fmt.Errorf("sweep monitored rooms: %w", err)
	}
	summary.RowsRemoved = int(n)
	for _, id := range remove {
		r.stagingRepo.Evict(id)
	}

	log.Info("Monitored rooms sweep completed",
		zap.Int("monitored", summary.Monitored),
		zap.Int("outdated", summary.Outdated),
		zap.Int("empty_deleted", summary.EmptyDeleted),
		zap.Int("delete_failed", summary.DeleteFailed),
	)
	return summary, nil
}

func (r *ReconcileUC) checkRoom(ctx context.Context, room model.MonitoredRoom) roomCheck {
	log := sweepLogger(ctx, r.log).With(zap.Int64("channel_id", room.ChannelID), zap.Int64("owner_id", room.OwnerID))

	channel, err := r.gateway.ResolveChannel(ctx, room.ChannelID)
	if err != nil {
		log.Info("monitored room did not resolve", zap.Error(err))
		return roomCheck{room: room, verdict: verdictOutdated}
	}
	if !channel.IsVoice() || channel.GuildID == 0 {
		log.Info("monitored room is not a guild voice channel")
		return roomCheck{room: room, verdict: verdictOutdated}
	}
	if channel.ID != room.ChannelID {
		log.Warn("monitored room id mismatch", zap.Int64("resolved_id", channel.ID))
		return roomCheck{room: room, verdict: verdictOutdated}
	}

	members, err := r.gateway.ListMembers(ctx, room.ChannelID)
	if err != nil {
		log.Error("list room members", zap.Error(err))
		return roomCheck{room: room, verdict: verdictKeep}
	}
	if len(members) > 0 {
		return roomCheck{room: room, verdict: verdictKeep}
	}
	return roomCheck{room: room, verdict: verdictEmpty}
}

// SweepCategories drops templates whose category vanished and adopts or
// deletes unmonitored rooms left inside live template categories.
func (r *ReconcileUC) SweepCategories(ctx context.Context) (CategorySweepSummary, error) {
	log := sweepLogger(ctx, r.log)
	var summary CategorySweepSummary

	categoryIDs, err := r.templateRepo.AllCategoryIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("sweep categories: %w", err)
	}
	origins, err := r.templateRepo.OriginChannelIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("sweep categories: %w", err)
	}
	rooms, err := r.roomRepo.AllMonitoredRooms(ctx)
	if err != nil {
		return summary, fmt.Errorf("sweep categories: %w", err)
	}
	summary.Categories = len(categoryIDs)
	log.Info("Starting categories sweep", zap.Int("categories", len(categoryIDs)))

	skip := make(map[int64]struct{}, len(origins)+len(rooms))
	for _, id := range origins {
		skip[id] = struct{}{}
	}
	for _, id := range model.MonitoredRoomIDs(rooms) {
		skip[id] = struct{}{}
	}

	var outdated []int64
	var candidates []model.Channel
	for check := range fanOut(ctx, r.concurrency, categoryIDs, r.checkCategory) {
		switch {
		case check.outdated:
			outdated = append(outdated, check.categoryID)
		case check.skipped:
			summary.Skipped++
		default:
			for _, child := range check.children {
				if _, ok := skip[child.ID]; ok || !child.IsVoice() {
					continue
				}
				candidates = append(candidates, child)
			}
		}
	}
	summary.Outdated = len(outdated)

	var errs []error

	deletedTemplates, err := r.templateRepo.DeleteTemplatesByCategoryIDs(ctx, outdated)
	if err != nil {
		log.Error("delete outdated templates", zap.Int64s("category_ids", outdated), zap.Error(err))
		errs = append(errs, err)
	}
	summary.TemplatesDeleted = deletedTemplates

	var adopt []model.MonitoredRoom
	var empty []int64
	for _, child := range candidates {
		members, err := r.gateway.ListMembers(ctx, child.ID)
		if err != nil {
			log.Error("list orphan room members", zap.Int64("channel_id", child.ID), zap.Error(err))
			continue
		}
		if len(members) > 0 {
			owner := child.OwnerID
			if owner == 0 {
				owner = r.gateway.SelfID()
			}
			adopt = append(adopt, model.MonitoredRoom{ChannelID: child.ID, OwnerID: owner})
			continue
		}
		empty = append(empty, child.ID)
	}

	deleted := make([]int64, 0, len(empty))
	for res := range fanOut(ctx, r.concurrency, empty, r.deleteChannel) {
		if res.err != nil {
			summary.DeleteFailed++
			log.Error("delete orphan room", zap.Int64("channel_id", res.channelID), zap.Error(res.err))
			continue
		}
		deleted = append(deleted, res.channelID)
	}
	summary.ChildrenDeleted = len(deleted)

	// A row may have appeared for a child since the snapshot was taken.
	if _, err := r.roomRepo.DeleteMonitoredRoomsByIDs(ctx, deleted); err != nil {
		log.Error("remove deleted orphan rows", zap.Int("rows", len(deleted)), zap.Error(err))
		errs = append(errs, err)
	}
	for _, id := range deleted {
		r.stagingRepo.Evict(id)
	}

	recovered, err := r.roomRepo.InsertMonitoredRoomsIfAbsent(ctx, adopt)
	if err != nil {
		log.Error("recover monitored rooms", zap.Int("rows", len(adopt)), zap.Error(err))
		errs = append(errs, err)
	}
	summary.Recovered = recovered

	log.Info("Categories sweep completed",
		zap.Int("categories", summary.Categories),
		zap.Int("outdated", summary.Outdated),
		zap.Int64("templates_deleted", summary.TemplatesDeleted),
		zap.Int64("recovered", summary.Recovered),
		zap.Int("children_deleted", summary.ChildrenDeleted),
	)

	if err := errors.Join(errs...); err != nil {
		return summary, fmt.Errorf("sweep categories: %w", err)
	}
	return summary, nil
}

func (r *ReconcileUC) checkCategory(ctx context.Context, categoryID int64) categoryCheck {
	log := sweepLogger(ctx, r.log).With(zap.Int64("category_id", categoryID))

	category, children, err := r.gateway.ResolveCategory(ctx, categoryID)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Info("template category not found", zap.Error(err))
			return categoryCheck{categoryID: categoryID, outdated: true}
		}
		log.Error("resolve template category", zap.Error(err))
		return categoryCheck{categoryID: categoryID, skipped: true}
	}
	if category.ID != categoryID {
		log.Warn("template category id mismatch", zap.Int64("resolved_id", category.ID))
		return categoryCheck{categoryID: categoryID, outdated: true}
	}
	if !category.IsCategory() {
		log.Info("template category is not a category channel")
		return categoryCheck{categoryID: categoryID, outdated: true}
	}

	return categoryCheck{categoryID: categoryID, children: children}
}

// deleteChannel treats an already deleted channel as success.
func (r *ReconcileUC) deleteChannel(ctx context.Context, channelID int64) deletion {
	err := r.gateway.DeleteChannel(ctx, channelID)
	if err != nil && errors.IsNotFound(err) {
		err = nil
	}
	return deletion{channelID: channelID, err: err}
}

// fanOut runs fn for every item and streams results in completion order.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R) <-chan R {
	results := make(chan R, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	go func() {
		for _, item := range items {
			g.Go(func() error {
				results <- fn(ctx, item)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	return results
}

type sweepLoggerKey struct{}

func withSweepLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, sweepLoggerKey{}, log)
}

func sweepLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(sweepLoggerKey{}).(*zap.Logger); ok {
		return log
	}
	return fallback
}
