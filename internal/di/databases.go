package di

import (
	"fmt"

	"github.com/aristath/momentum/internal/config"
	"github.com/aristath/momentum/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// history.db - Daily OHLCV bars used to assemble bundles
	historyDB, err := openDatabase(cfg.HistoryDBPath(), database.ProfileStandard, database.NameHistory)
	if err != nil {
		return nil, err
	}
	container.HistoryDB = historyDB

	// runs.db - Append-only allocation run log
	runsDB, err := openDatabase(cfg.RunsDBPath(), database.ProfileLedger, database.NameRuns)
	if err != nil {
		historyDB.Close()
		return nil, err
	}
	container.RunsDB = runsDB

	log.Info().
		Str("history", historyDB.Path()).
		Str("runs", runsDB.Path()).
		Msg("Databases initialized")

	return container, nil
}

func openDatabase(path string, profile database.DatabaseProfile, name string) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply %s schema: %w", name, err)
	}

	return db, nil
}
