package sequence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is a per-kind, per-year counter row. Numbers are allocated under
// a row lock so two concurrent conversions cannot mint the same number.
type Sequence struct {
	ID      uint   `gorm:"primaryKey"`
	Kind    string `gorm:"size:20;not null;uniqueIndex:idx_seq_kind_year"`
	Year    int    `gorm:"not null;uniqueIndex:idx_seq_kind_year"`
	LastSeq int    `gorm:"not null;default:0"`
}

// Next allocates the next number for kind/year and formats it as
// "<PREFIX>-<year>-<4-digit-seq>", e.g. JOB-2026-0001. Must be called inside
// the transaction that creates the numbered record.
func Next(tx *gorm.DB, kind, prefix string, year int) (string, error) {
	var seq Sequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND year = ?", kind, year).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = Sequence{Kind: kind, Year: year}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		// Re-read under the lock: a concurrent create wins the unique
		// index and this one must observe its counter.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND year = ?", kind, year).
			First(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	seq.LastSeq++
	if err := tx.Save(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq.LastSeq), nil
}
