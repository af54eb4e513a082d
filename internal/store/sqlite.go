package store

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const sqliteSchema = `
create table if not exists streams (
	id           text primary key,
	creator_id   text not null,
	submitted_by text not null,
	url          text not null,
	extracted_id text not null,
	title        text not null default '',
	small_img    text not null default '',
	big_img      text not null default '',
	played       boolean not null default false,
	active       boolean not null default false,
	created_at   timestamp not null
);

create index if not exists idx_streams_pending
	on streams (creator_id, played, active);

create table if not exists upvotes (
	user_id    text not null,
	stream_id  text not null references streams (id) on delete cascade,
	created_at timestamp not null default current_timestamp,
	primary key (user_id, stream_id)
);
`

func OpenSQLite(path string) (Store, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps the driver from returning SQLITE_BUSY
	// under concurrent toggles.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("module", "store").Str("backend", "sqlite").Str("path", path).Msg("store opened")
	return &sqlStore{db: db}, nil
}
