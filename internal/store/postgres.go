package store

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
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
	created_at   timestamptz not null default now()
);

create index if not exists idx_streams_pending
	on streams (creator_id, played, active);

create table if not exists upvotes (
	user_id    text not null,
	stream_id  text not null references streams (id) on delete cascade,
	created_at timestamptz not null default now(),
	primary key (user_id, stream_id)
);
`

func OpenPostgres(dbURL string) (Store, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("module", "store").Str("backend", "postgres").Msg("store opened")
	return &sqlStore{db: db}, nil
}
