package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a row of kv_entries.
type Entry struct {
	EntryKey  string     `gorm:"column:entry_key;primaryKey"`
	Value     string     `gorm:"column:value"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "kv_entries" }

// Repository is a SQL-backed key-value store used when Redis is not
// configured. Keys past their expiry read as missing.
type Repository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewRepository constructs a repository bound to the provided gorm DB. A zero
// ttl stores entries without expiry.
func NewRepository(db *gorm.DB, ttl time.Duration) *Repository {
	return &Repository{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Load returns the live value stored at key and, when a ttl is set, pushes
// its expiry forward the way Redis GETEX does.
func (r *Repository) Load(ctx context.Context, key string) (string, bool, error) {
	now := r.now()
	var entry Entry
	err := r.db.WithContext(ctx).
		Where("entry_key = ?", key).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		Take(&entry).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if r.ttl > 0 {
		err = r.db.WithContext(ctx).
			Model(&Entry{}).
			Where("entry_key = ?", key).
			Update("expires_at", now.Add(r.ttl)).
			Error
		if err != nil {
			return "", false, err
		}
	}
	return entry.Value, true, nil
}

// Save upserts key, refreshing its expiry.
func (r *Repository) Save(ctx context.Context, key, payload string) error {
	now := r.now()
	entry := Entry{EntryKey: key, Value: payload, UpdatedAt: now}
	if r.ttl > 0 {
		expires := now.Add(r.ttl)
		entry.ExpiresAt = &expires
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&entry).
		Error
}

// Delete removes key if it exists.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("entry_key = ?", key).
		Delete(&Entry{}).
		Error
}

// PurgeExpired removes entries whose expiry has passed and reports how many were deleted.
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", r.now()).
		Delete(&Entry{})
	return res.RowsAffected, res.Error
}
