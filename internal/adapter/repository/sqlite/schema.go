package sqlite

// Schema holds the portfolio tables. Money columns are decimal strings.
const Schema = `
CREATE TABLE IF NOT EXISTS meta (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	format        TEXT    NOT NULL,
	version       INTEGER NOT NULL,
	saved_at      TEXT    NOT NULL,
	starting_cash TEXT    NOT NULL,
	cash          TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	symbol   TEXT    PRIMARY KEY,
	quantity INTEGER NOT NULL CHECK (quantity >= 0)
);

CREATE TABLE IF NOT EXISTS transactions (
	seq         INTEGER PRIMARY KEY,
	id          TEXT    NOT NULL UNIQUE,
	symbol      TEXT    NOT NULL,
	action      TEXT    NOT NULL,
	quantity    INTEGER NOT NULL,
	price       TEXT    NOT NULL,
	executed_at TEXT    NOT NULL
);
`
