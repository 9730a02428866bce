package recipes

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
)

const loadBatchSize = 500

type LoadStats struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// LoadIngredients imports "name,unit" rows. Pairs already stored are left
// alone, so running the same file twice inserts nothing the second time.
func LoadIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var batch []Ingredient
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
			if res.Error != nil {
				return fmt.Errorf("insert ingredients: %w", res.Error)
			}
			stats.Inserted += int(res.RowsAffected)
			batch = batch[:0]
			return nil
		}

		line := 0
		for {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			line++
			if err != nil {
				return apperr.Validation("file", fmt.Sprintf("line %d: %v", line, err))
			}
			if len(rec) < 2 {
				return apperr.Validation("file", fmt.Sprintf("line %d: expected name,unit", line))
			}
			name, unit := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
			if name == "" || unit == "" {
				return apperr.Validation("file", fmt.Sprintf("line %d: empty name or unit", line))
			}
			stats.Read++
			batch = append(batch, Ingredient{Name: name, MeasurementUnit: unit})
			if len(batch) >= loadBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
	if err != nil {
		return LoadStats{}, err
	}
	stats.Skipped = stats.Read - stats.Inserted
	return stats, nil
}
