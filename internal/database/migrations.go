package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Timesheet lookups by owner, period, and approval queue
		{"timesheets", "idx_timesheets_user_date", "user_id, date"},
		{"timesheets", "idx_timesheets_project_id", "project_id"},
		{"timesheets", "idx_timesheets_status", "status"},

		// Forecast grid lookups
		{"resource_forecasts", "idx_forecasts_week_starting", "week_starting"},

		// Manager scoping
		{"projects", "idx_projects_project_manager_id", "project_manager_id"},

		// Assignment lookups
		{"project_resources", "idx_project_resources_project_id", "project_id"},
		{"project_resources", "idx_project_resources_user_id", "user_id"},

		// Notification feed
		{"notifications", "idx_notifications_user_read", "user_id, is_read"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
