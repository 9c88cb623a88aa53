package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Objects table - placements loaded by reset-scene
		`CREATE TABLE IF NOT EXISTS objects (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('2d', '3d')),
			name TEXT NOT NULL DEFAULT '',
			shape TEXT NOT NULL DEFAULT '',
			mesh TEXT NOT NULL DEFAULT '',
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			z REAL NOT NULL DEFAULT 0,
			size REAL NOT NULL DEFAULT 0,
			scale REAL NOT NULL DEFAULT 0,
			color INTEGER NOT NULL DEFAULT 0,
			render_mode TEXT NOT NULL DEFAULT '',
			auto_rotate_speed REAL NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_objects_position ON objects(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
