package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Dataset{},
		&DatasetInstitution{},
		&Institution{},
		&YearCount{},
	}
}

// TableNames returns table names of all models in AllModels order.
func TableNames() []string {
	return []string{
		Dataset{}.TableName(),
		DatasetInstitution{}.TableName(),
		Institution{}.TableName(),
		YearCount{}.TableName(),
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
