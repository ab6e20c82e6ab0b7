package services

import (
	"context"
	"sync"
	"time"

	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/metrics"
	"hypoforum/internal/models"
	"hypoforum/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Drift is an aggregate that disagrees with the rows it is derived from.
type Drift struct {
	Kind     models.TargetKind `json:"kind"`
	ID       uint              `json:"id"`
	Stored   int               `json:"stored"`
	Expected int               `json:"expected"`
}

type AuditReport struct {
	Threads  int64         `json:"threads"`
	Comments int64         `json:"comments"`
	Users    int64         `json:"users"`
	Drifts   []Drift       `json:"drifts"`
	Took     time.Duration `json:"took"`
}

type driftRow struct {
	ID       uint
	Stored   int
	Expected int
}

// Auditor recomputes vote_count from the vote ledger and reputation from the
// reputation log. Writes schedule a per-thread check on a background queue,
// which also refreshes the thread's hot score.
type Auditor struct {
	db      *gorm.DB
	queue   chan uint // 待检查的帖子 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
	once    sync.Once
}

func NewAuditor(gdb *gorm.DB, queueSize int) *Auditor {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Auditor{
		db:      gdb,
		queue:   make(chan uint, queueSize), // 缓冲队列，防止阻塞
		pending: make(map[uint]bool),
	}
}

// Start runs the background worker until ctx is done.
func (a *Auditor) Start(ctx context.Context) {
	a.once.Do(func() {
		go a.worker(ctx)
	})
}

// ScheduleCheck 将帖子加入检查队列（异步，去重）
func (a *Auditor) ScheduleCheck(threadID uint) {
	a.mu.Lock()
	if a.pending[threadID] {
		// 已在队列中，跳过
		a.mu.Unlock()
		return
	}
	a.pending[threadID] = true
	a.mu.Unlock()

	select {
	case a.queue <- threadID:
	default:
		// 队列满了，移除 pending 标记
		a.mu.Lock()
		delete(a.pending, threadID)
		a.mu.Unlock()
		logger.L.Debug("audit queue full, skipping thread", zap.Uint("thread_id", threadID))
	}
}

func (a *Auditor) worker(ctx context.Context) {
	// 批量处理：收集一批请求后统一处理
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-a.queue:
			batch = append(batch, id)
			if len(batch) >= 50 {
				a.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (a *Auditor) processBatch(ctx context.Context, ids []uint) {
	for _, id := range ids {
		// 先清 pending，处理期间的新写入会再次入队
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()

		drifts, err := a.AuditThread(ctx, id)
		if err != nil {
			logger.L.Warn("thread audit failed", zap.Uint("thread_id", id), zap.Error(err))
			continue
		}
		for _, d := range drifts {
			logger.L.Error("vote count drift",
				zap.String("kind", string(d.Kind)), zap.Uint("id", d.ID),
				zap.Int("stored", d.Stored), zap.Int("expected", d.Expected))
		}
		if err := a.RefreshHotScore(ctx, id); err != nil {
			logger.L.Warn("hot score update failed", zap.Uint("thread_id", id), zap.Error(err))
		}
	}
}

// AuditThread checks one thread and its comments against the vote ledger.
func (a *Auditor) AuditThread(ctx context.Context, threadID uint) ([]Drift, error) {
	gdb := a.db.WithContext(ctx)

	var threadRows []driftRow
	err := gdb.Raw(`SELECT t.id AS id, t.vote_count AS stored, COALESCE(SUM(v.value), 0) AS expected
		FROM threads t LEFT JOIN votes v ON v.target_type = ? AND v.target_id = t.id
		WHERE t.id = ? GROUP BY t.id, t.vote_count`, models.TargetThread, threadID).Scan(&threadRows).Error
	if err != nil {
		return nil, errs.Storage(err)
	}
	if len(threadRows) == 0 {
		return nil, errs.ErrThreadNotFound
	}

	var commentRows []driftRow
	err = gdb.Raw(`SELECT c.id AS id, c.vote_count AS stored, COALESCE(SUM(v.value), 0) AS expected
		FROM comments c LEFT JOIN votes v ON v.target_type = ? AND v.target_id = c.id
		WHERE c.thread_id = ? GROUP BY c.id, c.vote_count`, models.TargetComment, threadID).Scan(&commentRows).Error
	if err != nil {
		return nil, errs.Storage(err)
	}

	var drifts []Drift
	drifts = appendDrifts(drifts, models.TargetThread, threadRows)
	drifts = appendDrifts(drifts, models.TargetComment, commentRows)
	return drifts, nil
}

// AuditAll checks every thread, comment and user.
func (a *Auditor) AuditAll(ctx context.Context) (*AuditReport, error) {
	start := time.Now()
	gdb := a.db.WithContext(ctx)
	report := &AuditReport{}

	for _, c := range []struct {
		model interface{}
		count *int64
	}{
		{&models.Thread{}, &report.Threads},
		{&models.Comment{}, &report.Comments},
		{&models.User{}, &report.Users},
	} {
		if err := gdb.Model(c.model).Count(c.count).Error; err != nil {
			return nil, errs.Storage(err)
		}
	}

	queries := []struct {
		kind models.TargetKind
		sql  string
		args []interface{}
	}{
		{models.TargetThread, `SELECT t.id AS id, t.vote_count AS stored, COALESCE(SUM(v.value), 0) AS expected
			FROM threads t LEFT JOIN votes v ON v.target_type = ? AND v.target_id = t.id
			GROUP BY t.id, t.vote_count HAVING t.vote_count <> COALESCE(SUM(v.value), 0)`,
			[]interface{}{models.TargetThread}},
		{models.TargetComment, `SELECT c.id AS id, c.vote_count AS stored, COALESCE(SUM(v.value), 0) AS expected
			FROM comments c LEFT JOIN votes v ON v.target_type = ? AND v.target_id = c.id
			GROUP BY c.id, c.vote_count HAVING c.vote_count <> COALESCE(SUM(v.value), 0)`,
			[]interface{}{models.TargetComment}},
		{models.TargetUser, `SELECT u.id AS id, u.reputation AS stored, COALESCE(SUM(r.amount), 0) AS expected
			FROM users u LEFT JOIN reputation_logs r ON r.user_id = u.id
			GROUP BY u.id, u.reputation HAVING u.reputation <> COALESCE(SUM(r.amount), 0)`,
			nil},
	}
	for _, q := range queries {
		var rows []driftRow
		if err := gdb.Raw(q.sql, q.args...).Scan(&rows).Error; err != nil {
			return nil, errs.Storage(err)
		}
		report.Drifts = appendDrifts(report.Drifts, q.kind, rows)
	}

	report.Took = time.Since(start)
	metrics.AuditDrift.Set(float64(len(report.Drifts)))
	return report, nil
}

// RefreshHotScore 计算并更新单个帖子的热度
func (a *Auditor) RefreshHotScore(ctx context.Context, threadID uint) error {
	var thread models.Thread
	err := a.db.WithContext(ctx).
		Select("id", "vote_count", "answer_count", "comment_count", "created_at").
		Take(&thread, "id = ?", threadID).Error
	if err != nil {
		return errs.Ensure(notFound(err, errs.ErrThreadNotFound))
	}

	score := utils.CalculateHotScore(thread.CreatedAt, thread.VoteCount, thread.AnswerCount, thread.CommentCount)
	return errs.Ensure(a.db.WithContext(ctx).Model(&thread).UpdateColumn("hot_score", int(score)).Error)
}

// RefreshRecentHotScores 更新最近 7 天活跃的帖子热度，随定时审计一起跑
func (a *Auditor) RefreshRecentHotScores(ctx context.Context) (int, error) {
	var ids []uint
	since := time.Now().AddDate(0, 0, -7)
	if err := a.db.WithContext(ctx).Model(&models.Thread{}).
		Where("last_activity_at >= ?", since).
		Pluck("id", &ids).Error; err != nil {
		return 0, errs.Storage(err)
	}
	for _, id := range ids {
		if err := a.RefreshHotScore(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func appendDrifts(dst []Drift, kind models.TargetKind, rows []driftRow) []Drift {
	for _, r := range rows {
		if r.Stored != r.Expected {
			dst = append(dst, Drift{Kind: kind, ID: r.ID, Stored: r.Stored, Expected: r.Expected})
		}
	}
	return dst
}
