package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

// sqlStore implements Store over sqlx for both backends. Queries are
// written with ? bindvars and rebound per driver.
type sqlStore struct {
	db *sqlx.DB
}

func (s *sqlStore) Close() error { return s.db.Close() }

// unavailable wraps driver errors so callers can match on
// domain.ErrUnavailable without knowing which backend failed.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
}

const streamColumns = `
	s.id, s.creator_id, s.submitted_by, s.url, s.extracted_id,
	s.title, s.small_img, s.big_img, s.played, s.active, s.created_at,
	(select count(*) from upvotes v where v.stream_id = s.id) as upvotes`

func (s *sqlStore) CreateStream(ctx context.Context, st *domain.Stream) error {
	query := s.db.Rebind(`
	  insert into streams (id, creator_id, submitted_by, url, extracted_id,
	                       title, small_img, big_img, played, active, created_at)
	  values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.CreatorID, st.SubmittedBy, st.URL, st.ExtractedID,
		st.Title, st.SmallImg, st.BigImg, st.Played, st.Active, st.CreatedAt)
	if err != nil {
		return unavailable("create stream", err)
	}
	return nil
}

func (s *sqlStore) StreamByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	query := s.db.Rebind(`select` + streamColumns + ` from streams s where s.id = ?`)

	var st domain.Stream
	err := s.db.GetContext(ctx, &st, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("stream by id", err)
	}
	return &st, nil
}

func (s *sqlStore) PendingByCreator(ctx context.Context, creator domain.CreatorID) ([]domain.Stream, error) {
	query := s.db.Rebind(`
	  select` + streamColumns + `
	  from streams s
	  where s.creator_id = ? and s.played = false and s.active = false
	  order by upvotes desc, s.id asc`)

	streams := make([]domain.Stream, 0)
	if err := s.db.SelectContext(ctx, &streams, query, creator); err != nil {
		return nil, unavailable("pending by creator", err)
	}
	return streams, nil
}

func (s *sqlStore) ActiveByCreator(ctx context.Context, creator domain.CreatorID) (*domain.Stream, error) {
	query := s.db.Rebind(`
	  select` + streamColumns + `
	  from streams s
	  where s.creator_id = ? and s.active = true`)

	var st domain.Stream
	err := s.db.GetContext(ctx, &st, query, creator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("active by creator", err)
	}
	return &st, nil
}

func (s *sqlStore) PromoteNext(ctx context.Context, creator domain.CreatorID) (*domain.Stream, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin promote", err)
	}
	defer tx.Rollback()

	demote := tx.Rebind(`
	  update streams set active = false, played = true
	  where creator_id = ? and active = true`)
	if _, err := tx.ExecContext(ctx, demote, creator); err != nil {
		return nil, unavailable("demote active", err)
	}

	head := tx.Rebind(`
	  select` + streamColumns + `
	  from streams s
	  where s.creator_id = ? and s.played = false and s.active = false
	  order by upvotes desc, s.id asc
	  limit 1`)

	var next domain.Stream
	err = tx.GetContext(ctx, &next, head, creator)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing pending: the demote still counts, the room idles.
		if err := tx.Commit(); err != nil {
			return nil, unavailable("commit promote", err)
		}
		log.Debug().Str("module", "store").Str("creator", string(creator)).Msg("promote found empty queue")
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("select head", err)
	}

	promote := tx.Rebind(`update streams set active = true, played = false where id = ?`)
	if _, err := tx.ExecContext(ctx, promote, next.ID); err != nil {
		return nil, unavailable("promote head", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit promote", err)
	}

	next.Active = true
	next.Played = false
	return &next, nil
}

func (s *sqlStore) HasVoted(ctx context.Context, user domain.UserID, stream domain.StreamID) (bool, error) {
	query := s.db.Rebind(`select count(*) from upvotes where user_id = ? and stream_id = ?`)

	var n int
	if err := s.db.GetContext(ctx, &n, query, user, stream); err != nil {
		return false, unavailable("has voted", err)
	}
	return n > 0, nil
}

func (s *sqlStore) AddVote(ctx context.Context, user domain.UserID, stream domain.StreamID) error {
	// The (user_id, stream_id) primary key makes concurrent duplicate
	// votes a conflict, not a double count.
	query := s.db.Rebind(`
	  insert into upvotes (user_id, stream_id)
	  values (?, ?)
	  on conflict (user_id, stream_id) do nothing`)

	if _, err := s.db.ExecContext(ctx, query, user, stream); err != nil {
		return unavailable("add vote", err)
	}
	return nil
}

func (s *sqlStore) RemoveVote(ctx context.Context, user domain.UserID, stream domain.StreamID) error {
	query := s.db.Rebind(`delete from upvotes where user_id = ? and stream_id = ?`)

	if _, err := s.db.ExecContext(ctx, query, user, stream); err != nil {
		return unavailable("remove vote", err)
	}
	return nil
}

func (s *sqlStore) CountVotes(ctx context.Context, stream domain.StreamID) (int, error) {
	query := s.db.Rebind(`select count(*) from upvotes where stream_id = ?`)

	var n int
	if err := s.db.GetContext(ctx, &n, query, stream); err != nil {
		return 0, unavailable("count votes", err)
	}
	return n, nil
}
