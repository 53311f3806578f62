package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/glossary/api/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AuditRepository stores the admin mutation trail in Postgres.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AuditFilter narrows List; empty fields match everything.
type AuditFilter struct {
	Action string
	Term   string
}

// AuditPage is one page of entries, newest first.
type AuditPage struct {
	Data       []model.AuditEntry `json:"data"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalCount int64              `json:"totalCount"`
	TotalPages int                `json:"totalPages"`
}

// Paging clamps page and limit to the accepted ranges.
func Paging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return page, limit
}

func (r *AuditRepository) List(ctx context.Context, filter AuditFilter, page, limit int) (*AuditPage, error) {
	page, limit = Paging(page, limit)

	query := r.db.WithContext(ctx).Model(&model.AuditEntry{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Term != "" {
		query = query.Where("lower(term) = lower(?)", filter.Term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	entries := []model.AuditEntry{}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return &AuditPage{
		Data:       entries,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// CountByAction reports how many mutations of each kind were recorded.
func (r *AuditRepository) CountByAction(ctx context.Context) (map[string]int64, error) {
	type actionCount struct {
		Action string
		Count  int64
	}
	var rows []actionCount
	err := r.db.WithContext(ctx).Model(&model.AuditEntry{}).
		Select("action, count(*) as count").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}
