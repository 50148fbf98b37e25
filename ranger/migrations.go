package ranger

import (
	"github.com/xy-planning-network/messleave/postgres"
	"gorm.io/gorm"
)

// Migrations is the ordered schema history of a messleave app.
//
// Keys are recorded in the migrations table as each runs;
// never reorder or rewrite an entry that has shipped.
func Migrations() []postgres.Migration {
	return []postgres.Migration{
		{
			Key: "0001_create_users_table.sql",
			Executor: func(tx *gorm.DB) error {
				return tx.Exec(`
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	picture TEXT NOT NULL DEFAULT '',
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_login TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`).Error
			},
		},
		{
			Key: "0002_index_users_email.sql",
			Executor: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE INDEX idx_users_email ON users (email);`).Error
			},
		},
	}
}
