package models

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report

With GENERATE_COLUMN_REPORT=true the server compares the live table with the
Project model and exits instead of serving. Columns present in the database
but unknown to the model are listed per table:

	--- Table: projects ---
	Found 1 columns not accounted for in model:
	  - legacy_slug

GENERATE_MODELS=true migrates first and then writes typed query helpers to the
output directory with gorm.io/gen.
*/

// persistedModels maps each managed table to its model.
var persistedModels = map[string]any{
	"projects": &Project{},
}

// GenerateModels migrates every persisted model, logs the mismatch report and
// writes query helpers to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	log.Info().Msg("migrating models")
	for table, model := range persistedModels {
		if err := migrateDB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrating %s: %w", table, err)
		}
	}

	if err := LogColumnMismatchReport(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Project{})
	g.Execute()

	log.Info().Str("outPath", outPath).Msg("model generation complete")
	return nil
}

// ColumnMismatchReport returns, per existing table, the database columns the
// model does not declare. Tables that do not exist yet are omitted.
func ColumnMismatchReport(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string, len(persistedModels))

	for table, model := range persistedModels {
		exists := db.Migrator().HasTable(table)
		if !exists {
			continue
		}

		dbColumns, err := tableColumns(db, table)
		if err != nil {
			return nil, err
		}

		modelFields, err := modelColumns(db, model)
		if err != nil {
			return nil, err
		}

		report[table] = findColumnMismatches(dbColumns, modelFields)
	}

	return report, nil
}

// LogColumnMismatchReport logs ColumnMismatchReport in a readable form.
func LogColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}

	total := 0
	for table, mismatches := range report {
		if len(mismatches) == 0 {
			log.Info().Str("table", table).Msg("all columns are accounted for in the model")
			continue
		}
		total += len(mismatches)
		log.Warn().Str("table", table).Strs("columns", mismatches).Msg("columns not accounted for in model")
	}

	log.Info().Int("total", total).Msg("column mismatch report complete")
	return nil
}

func tableColumns(db *gorm.DB, table string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, table).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}
	return columns, nil
}

// modelColumns resolves column names the way gorm does, so implicit
// snake_case names count as well as explicit column tags.
func modelColumns(db *gorm.DB, model any) ([]string, error) {
	s, err := schema.Parse(model, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parsing model schema: %w", err)
	}
	return s.DBNames, nil
}

func findColumnMismatches(dbColumns, modelFields []string) []string {
	mismatches := []string{}
	for _, col := range dbColumns {
		if !slices.Contains(modelFields, col) {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
