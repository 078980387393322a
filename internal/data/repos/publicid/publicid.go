package publicid

import (
	"fmt"
	"math/rand"

	"gorm.io/gorm"
)

const (
	min  = 100000
	span = 900000
)

// Free draws random 6-digit ids until one is unused for the given model
// column. Collision odds are low across the 900,000-value space, so there
// is no retry cap.
func Free(txx *gorm.DB, model interface{}, column string) (int, error) {
	for {
		candidate := rand.Intn(span) + min
		var count int64
		if err := txx.Model(model).
			Where(fmt.Sprintf("%s = ?", column), candidate).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}
