package services

import (
	"time"

	"hypoforum/internal/utils"

	"gorm.io/gorm"
)

type Options struct {
	Notifier      Notifier
	Filter        ContentFilter
	Cache         *utils.GlobalCache
	CacheTTL      time.Duration
	AuditQueueLen int
}

// Core wires the services that share one database, notifier and cache.
type Core struct {
	Votes     *VoteService
	Lifecycle *CommentLifecycle
	Comments  *CommentService
	Threads   *ThreadService
	Users     *UserService
	Auditor   *Auditor
}

func NewCore(gdb *gorm.DB, opts Options) *Core {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Filter == nil {
		opts.Filter = HeuristicFilter{}
	}
	if opts.Cache == nil {
		opts.Cache = utils.NewCache(500)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	auditor := NewAuditor(gdb, opts.AuditQueueLen)
	threads := &ThreadService{
		db:       gdb,
		filter:   opts.Filter,
		notifier: opts.Notifier,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}

	return &Core{
		Votes: &VoteService{
			db:       gdb,
			notifier: opts.Notifier,
			threads:  threads,
			auditor:  auditor,
		},
		Lifecycle: &CommentLifecycle{
			db:       gdb,
			notifier: opts.Notifier,
			threads:  threads,
			auditor:  auditor,
		},
		Comments: &CommentService{
			db:       gdb,
			filter:   opts.Filter,
			notifier: opts.Notifier,
			threads:  threads,
			auditor:  auditor,
		},
		Threads: threads,
		Users:   &UserService{db: gdb},
		Auditor: auditor,
	}
}
