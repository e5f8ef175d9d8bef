package jobs

import (
	"log"
	"strconv"
	"time"

	config "github.com/ushan-Gimhan/SWAPSPOT-BE/configs"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
)

const defaultListingMaxAgeDays = 90

// DeactivateStaleListings retires listings that have seen no updates for
// the configured number of days so browse results stay fresh.
func DeactivateStaleListings() {
	log.Println("Running job: DeactivateStaleListings...")

	maxAgeDays := defaultListingMaxAgeDays
	if raw := config.Config("LISTING_MAX_AGE_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxAgeDays = parsed
		}
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	result := database.DB.Model(&models.Item{}).
		Where("is_active = ? AND updated_at < ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("Error deactivating stale listings: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Deactivated %d stale listings older than %d days", result.RowsAffected, maxAgeDays)
	}
}
