package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/dealdesk/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateOffersTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS offers (
		supplier TEXT PRIMARY KEY,
		current_offer REAL,
		leverage_notes TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS offer_trail (
		id TEXT PRIMARY KEY,
		supplier TEXT NOT NULL,
		price REAL NOT NULL,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS email_messages (
		id TEXT PRIMARY KEY,
		supplier TEXT NOT NULL,
		role TEXT NOT NULL,
		body TEXT NOT NULL,
		offer REAL,
		sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateOffersTable adds columns introduced after the first schema
// version to existing databases.
func migrateOffersTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='offers'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'offers' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'offers' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'offers' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'offers' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(offers)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'offers'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'offers': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'offers'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'offers': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'offers'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'offers': %v", err)
		}
		return
	}

	if _, ok := columnExists["leverage_notes"]; !ok {
		_, err := DB.Exec("ALTER TABLE offers ADD COLUMN leverage_notes TEXT")
		if err != nil {
			logger.L.Error("Error adding 'leverage_notes' column to 'offers' table", "error", err)
		} else {
			logger.L.Info("Added 'leverage_notes' column to 'offers' table")
		}
	}
	if _, ok := columnExists["updated_at"]; !ok {
		_, err := DB.Exec("ALTER TABLE offers ADD COLUMN updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		if err != nil {
			logger.L.Error("Error adding 'updated_at' column to 'offers' table", "error", err)
		} else {
			logger.L.Info("Added 'updated_at' column to 'offers' table")
		}
	}
}
