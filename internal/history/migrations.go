package history

import "database/sql"

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    session_id  TEXT PRIMARY KEY,
    lang        TEXT NOT NULL DEFAULT 'js',
    source_hash TEXT NOT NULL,
    outcome     TEXT NOT NULL
                CHECK(outcome IN ('success','compile_error','runtime_error','timeout','init_error')),
    duration_us INTEGER NOT NULL DEFAULT 0,
    log_count   INTEGER NOT NULL DEFAULT 0,
    transport   TEXT NOT NULL DEFAULT 'http',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

func runMigrations(db *sql.DB) error {
	var current int
	row := db.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&current); err != nil {
		// Table doesn't exist or is empty.
		current = 0
	}

	if current >= schemaVersion {
		return nil
	}

	if current < 1 {
		if _, err := db.Exec(schemaV1); err != nil {
			return err
		}
	}

	_, err := db.Exec(`
		DELETE FROM schema_version;
		INSERT INTO schema_version (version) VALUES (?);
	`, schemaVersion)
	return err
}
