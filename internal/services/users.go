package services

import (
	"context"

	"hypoforum/internal/errs"
	"hypoforum/internal/models"
	"hypoforum/internal/utils"

	"gorm.io/gorm"
)

type Profile struct {
	User       models.User `json:"user"`
	Tier       string      `json:"tier"`
	TierIcon   string      `json:"tier_icon"`
	Days       int         `json:"days"`
	Threads    int64       `json:"threads"`
	Comments   int64       `json:"comments"`
	Accepted   int64       `json:"accepted"`
	VotesGiven int64       `json:"votes_given"`
}

type UserService struct {
	db *gorm.DB
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		return nil, errs.Ensure(notFound(err, errs.ErrUserNotFound))
	}
	return &user, nil
}

// Profile 用户主页数据
func (s *UserService) Profile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: *user, Days: utils.DaysSinceJoined(user.CreatedAt)}
	p.Tier, p.TierIcon = utils.ReputationTier(user.Reputation)

	gdb := s.db.WithContext(ctx)
	if err := gdb.Model(&models.Thread{}).Where("author_id = ?", id).Count(&p.Threads).Error; err != nil {
		return nil, errs.Storage(err)
	}
	if err := gdb.Model(&models.Comment{}).Where("author_id = ?", id).Count(&p.Comments).Error; err != nil {
		return nil, errs.Storage(err)
	}
	if err := gdb.Model(&models.Comment{}).Where("author_id = ? AND is_accepted = ?", id, true).Count(&p.Accepted).Error; err != nil {
		return nil, errs.Storage(err)
	}
	if err := gdb.Model(&models.Vote{}).Where("voter_id = ?", id).Count(&p.VotesGiven).Error; err != nil {
		return nil, errs.Storage(err)
	}
	return p, nil
}

// ReputationLog returns one page of the user's reputation history, newest first.
func (s *UserService) ReputationLog(ctx context.Context, id uint, page, pageSize int) ([]models.ReputationLog, int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	q := s.db.WithContext(ctx).Model(&models.ReputationLog{}).Where("user_id = ?", id)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Storage(err)
	}

	var logs []models.ReputationLog
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error; err != nil {
		return nil, 0, errs.Storage(err)
	}
	return logs, total, nil
}
