// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections and schema creation.

# Opening the Store

Open selects the driver from the configuration, pings with retries and
creates the schema:

	conn, err := db.Open(ctx, cfg)

SQLite (modernc.org/sqlite, pure Go) is the default. PostgreSQL uses lib/pq.
SQLite pools are capped at one connection so writes serialize.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes:

	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite); err != nil {
		log.Fatal(err)
	}

# Tables

  - votes: one row per recorded rating (id is generated and monotonic)
  - sessions: per-visit voting identity with has_voted/selected_rating
  - admin_sessions: hashed admin bearer tokens with expiry

# Relationships

	sessions 1──1 votes (votes.session_id, UNIQUE)

There is no foreign key: a reset deletes both tables in one transaction.

# Errors

IsUniqueViolation recognises duplicate-key failures from both drivers
(pq code 23505, SQLITE_CONSTRAINT_UNIQUE).
*/
package db
