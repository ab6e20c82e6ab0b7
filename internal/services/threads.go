package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"hypoforum/internal/db"
	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/metrics"
	"hypoforum/internal/models"
	"hypoforum/internal/notify"
	"hypoforum/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxTitleLength = 200
	maxTags        = 5
	threadPageSize = 20
)

type ThreadSort string

const (
	SortNew    ThreadSort = "new"
	SortActive ThreadSort = "active"
	SortHot    ThreadSort = "hot"
	SortTop    ThreadSort = "top"
)

var threadOrders = map[ThreadSort]string{
	SortNew:    "created_at DESC, id DESC",
	SortActive: "last_activity_at DESC, id DESC",
	SortHot:    "hot_score DESC, last_activity_at DESC, id DESC",
	SortTop:    "vote_count DESC, id DESC",
}

// ThreadDetail is a thread together with its comment forest.
type ThreadDetail struct {
	Thread   models.Thread
	Comments []*CommentNode
}

type CreateThreadInput struct {
	Title   string
	Content string
	Tags    []string
}

type ThreadService struct {
	db       *gorm.DB
	filter   ContentFilter
	notifier Notifier
	cache    *utils.GlobalCache
	cacheTTL time.Duration

	// epoch 每次失效 +1；加载期间发生过失效的结果不写入缓存
	epochMu sync.Mutex
	epoch   uint64
}

func threadCacheKey(id uint) string {
	return fmt.Sprintf("thread:detail:%d", id)
}

// Invalidate drops the cached detail of a thread after any write to it.
func (s *ThreadService) Invalidate(threadID uint) {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	s.epoch++
	s.cache.Delete(threadCacheKey(threadID))
}

func (s *ThreadService) cacheEpoch() uint64 {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	return s.epoch
}

// storeDetail caches detail unless something was invalidated since epoch was read.
func (s *ThreadService) storeDetail(threadID uint, epoch uint64, detail *ThreadDetail) bool {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.cache.Set(threadCacheKey(threadID), detail, s.cacheTTL)
	return true
}

// Create stores a new open thread. Moderation runs over title and content;
// flagged threads are stored with the flag and the result is returned as a warning.
func (s *ThreadService) Create(ctx context.Context, author *models.User, in CreateThreadInput) (*models.Thread, *ModerationResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return nil, nil, errs.Validation(fmt.Sprintf("title must be 1-%d characters", maxTitleLength))
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, nil, errs.Validation("content is required")
	}
	tags := normalizeTags(in.Tags)
	if len(tags) > maxTags {
		return nil, nil, errs.Validation(fmt.Sprintf("at most %d tags", maxTags))
	}

	verdict := moderate(s.filter, in.Content, title)
	if verdict.Action == ModerationBlock {
		return nil, nil, errs.ErrModerationBlocked.WithReasons(verdict.Reasons)
	}

	thread := models.Thread{
		AuthorID:          author.ID,
		Title:             title,
		Content:           in.Content,
		Tags:              tags,
		Status:            models.StatusOpen,
		IsFlagged:         verdict.Flagged(),
		ModerationScore:   verdict.Score,
		ModerationReasons: verdict.Reasons,
		LastActivityAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&thread).Error; err != nil {
		return nil, nil, errs.Storage(err)
	}
	thread.Author = *author

	logger.FromContext(ctx).Info("thread created",
		zap.Uint("thread_id", thread.ID), zap.Uint("author_id", author.ID), zap.Bool("flagged", thread.IsFlagged))

	if verdict.Flagged() {
		return &thread, &verdict, nil
	}
	return &thread, nil, nil
}

// List returns one page of threads and the total count.
func (s *ThreadService) List(ctx context.Context, sort ThreadSort, tag string, page int) ([]models.Thread, int64, error) {
	order, ok := threadOrders[sort]
	if !ok {
		order = threadOrders[SortNew]
	}
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Model(&models.Thread{})
	if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
		// tags 以 JSON 数组存储，按完整元素匹配
		elem, _ := json.Marshal(tag)
		q = q.Where("tags LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(string(elem))+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Storage(err)
	}

	var threads []models.Thread
	err := q.Preload("Author").
		Order(order).
		Offset((page - 1) * threadPageSize).
		Limit(threadPageSize).
		Find(&threads).Error
	if err != nil {
		return nil, 0, errs.Storage(err)
	}
	return threads, total, nil
}

// Detail loads a thread with its comment tree and counts the view.
// The tree is served from cache when fresh.
func (s *ThreadService) Detail(ctx context.Context, threadID uint) (*ThreadDetail, error) {
	gdb := s.db.WithContext(ctx)

	res := gdb.Model(&models.Thread{}).Where("id = ?", threadID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return nil, errs.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		s.Invalidate(threadID)
		return nil, errs.ErrThreadNotFound
	}

	if cached, ok := s.cache.Get(threadCacheKey(threadID)).(*ThreadDetail); ok {
		metrics.TreeCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.TreeCacheLookups.WithLabelValues("miss").Inc()

	epoch := s.cacheEpoch()
	detail, err := s.load(gdb, threadID)
	if err != nil {
		return nil, err
	}
	s.storeDetail(threadID, epoch, detail)
	return detail, nil
}

func (s *ThreadService) load(gdb *gorm.DB, threadID uint) (*ThreadDetail, error) {
	var thread models.Thread
	if err := gdb.Preload("Author").Take(&thread, "id = ?", threadID).Error; err != nil {
		return nil, errs.Ensure(notFound(err, errs.ErrThreadNotFound))
	}

	var comments []models.Comment
	if err := gdb.Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, errs.Storage(err)
	}

	return &ThreadDetail{
		Thread:   thread,
		Comments: BuildCommentTree(comments),
	}, nil
}

// UpdateStatus sets the thread status. The author, moderators and admins may do this.
func (s *ThreadService) UpdateStatus(ctx context.Context, actor *models.User, threadID uint, status models.ThreadStatus) (*models.Thread, error) {
	if !status.Valid() {
		return nil, errs.ErrInvalidStatus
	}

	var (
		thread  models.Thread
		changed bool
	)
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := db.ForUpdate(tx).Take(&thread, "id = ?", threadID).Error; err != nil {
			return notFound(err, errs.ErrThreadNotFound)
		}
		if thread.AuthorID != actor.ID && !actor.CanModerate() {
			return errs.ErrStatusForbidden
		}
		if thread.Status == status {
			return nil
		}
		if err := tx.Model(&thread).Update("status", status).Error; err != nil {
			return err
		}
		thread.Status = status
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return &thread, nil
	}

	s.Invalidate(threadID)
	logger.FromContext(ctx).Info("thread status changed",
		zap.Uint("thread_id", threadID), zap.String("status", string(status)), zap.Uint("actor_id", actor.ID))

	ev := notify.NewEvent(models.NotificationStatusChange, thread.AuthorID, actor.ID,
		fmt.Sprintf("Your thread \"%s\" is now %s", thread.Title, status), "")
	ev.ThreadID = threadID
	emit(ctx, s.notifier, ev)

	return &thread, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func normalizeTags(tags []string) models.StringList {
	out := make(models.StringList, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
