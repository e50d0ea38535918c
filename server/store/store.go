package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"drawbench/server/engine"
)

//go:embed schema.sql
var schema embed.FS

var ErrNotFound = errors.New("not found")

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

type Match struct {
	ID           uuid.UUID  `json:"id"`
	PlayerA      string     `json:"player_a"`
	PlayerB      string     `json:"player_b"`
	HandsPlanned int        `json:"hands_planned"`
	DeckSeedBase int64      `json:"deck_seed_base"`
	TiePolicy    string     `json:"tie_policy"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	HandsPlayed  int        `json:"hands_played"`
	Aborted      int        `json:"aborted"`
	NetA         int        `json:"net_a"`
}

type Participant struct {
	Label       string  `json:"label"`
	Name        string  `json:"name"`
	HandsButton int     `json:"hands_button"`
	HandsBlind  int     `json:"hands_blind"`
	Wins        int     `json:"wins"`
	NetChips    int     `json:"net_chips"`
	Checks      int     `json:"check_ct"`
	Calls       int     `json:"call_ct"`
	Bets        int     `json:"bet_ct"`
	Raises      int     `json:"raise_ct"`
	Folds       int     `json:"fold_ct"`
	Elo         float64 `json:"elo"`
}

type HandRow struct {
	HandID       uuid.UUID `json:"hand_id"`
	Index        int       `json:"hand_index"`
	ButtonPlayer string    `json:"button_player"`
	BlindPlayer  string    `json:"blind_player"`
	Pot          int       `json:"pot"`
	ButtonResult int       `json:"button_result"`
	BlindResult  int       `json:"blind_result"`
	Showdown     bool      `json:"showdown"`
	Tie          bool      `json:"tie"`
	Winner       string    `json:"winner"`
	LastRound    string    `json:"last_round"`
	ButtonHand   []string  `json:"button_hand"`
	BlindHand    []string  `json:"blind_hand"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is one stored action row.
type Event struct {
	Seq int `json:"seq"`
	engine.Action
}

func (db *DB) CreateMatch(ctx context.Context, m Match) error {
	_, err := db.Exec(ctx, `
		INSERT INTO matches(id, player_a, player_b, hands_planned, deck_seed_base, tie_policy)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.PlayerA, m.PlayerB, m.HandsPlanned, m.DeckSeedBase, m.TiePolicy)
	return err
}

// InsertHand stores a settled hand and its action rows atomically.
func (db *DB) InsertHand(ctx context.Context, matchID uuid.UUID, index int, h engine.HandSummary) error {
	handID, err := uuid.Parse(h.ID)
	if err != nil {
		return fmt.Errorf("hand id %q: %w", h.ID, err)
	}
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // no-op after commit

	if _, err := tx.Exec(ctx, `
		INSERT INTO hand_results(
			hand_id, match_id, hand_index, button_player, blind_player,
			pot, button_result, blind_result, showdown, tie, winner, last_round,
			button_hand, blind_hand
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, handID, matchID, index, h.Players[engine.Button], h.Players[engine.Blind],
		h.Pot, h.Results[engine.Button], h.Results[engine.Blind], h.Showdown, h.Tie,
		h.Winner.String(), h.Rounds.String(),
		engine.CardStrings(h.Hands[engine.Button]), engine.CardStrings(h.Hands[engine.Blind]),
	); err != nil {
		return err
	}

	rows := make([][]any, len(h.Actions))
	for i, a := range h.Actions {
		rows[i] = []any{
			handID, i, a.Actor.String(), string(a.Kind), a.PotSize, a.BetSize, a.PotOdds,
			engine.CardStrings(a.Hand), engine.CardStrings(a.BestDraw), engine.CardStrings(a.HandAfter),
			a.DrawsLeft, a.CardsKept, a.OpponentKept, a.BetModel, a.Value, a.BetThisHand,
			a.RoundPattern, a.HandPattern, a.TotalBet, a.Result, a.MarginBet, a.MarginResult,
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"hand_events"}, eventColumns, pgx.CopyFromRows(rows)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var eventColumns = []string{
	"hand_id", "seq", "actor", "action", "pot_size", "bet_size", "pot_odds",
	"hand", "best_draw", "hand_after", "draws_left", "num_cards_kept", "num_opponent_kept",
	"bet_model", "value_heuristic", "bet_this_hand", "actions_this_round", "actions_full_hand",
	"total_bet", "result", "margin_bet", "margin_result",
}

// CompleteMatch stamps the match totals and writes both participants.
func (db *DB) CompleteMatch(ctx context.Context, m Match, parts []Participant) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE matches SET ended_at = now(), hands_played = $2, aborted = $3, net_a = $4
		 WHERE id = $1
	`, m.ID, m.HandsPlayed, m.Aborted, m.NetA); err != nil {
		return err
	}
	for _, p := range parts {
		if _, err := tx.Exec(ctx, `
			INSERT INTO match_participants(
				match_id, label, name, hands_button, hands_blind, wins, net_chips,
				check_ct, call_ct, bet_ct, raise_ct, fold_ct, elo
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (match_id, label) DO UPDATE SET
				hands_button = EXCLUDED.hands_button,
				hands_blind = EXCLUDED.hands_blind,
				wins = EXCLUDED.wins,
				net_chips = EXCLUDED.net_chips,
				check_ct = EXCLUDED.check_ct,
				call_ct = EXCLUDED.call_ct,
				bet_ct = EXCLUDED.bet_ct,
				raise_ct = EXCLUDED.raise_ct,
				fold_ct = EXCLUDED.fold_ct,
				elo = EXCLUDED.elo
		`, m.ID, p.Label, p.Name, p.HandsButton, p.HandsBlind, p.Wins, p.NetChips,
			p.Checks, p.Calls, p.Bets, p.Raises, p.Folds, p.Elo); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const matchColumns = `id, player_a, player_b, hands_planned, deck_seed_base, tie_policy,
	started_at, ended_at, hands_played, aborted, net_a`

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.PlayerA, &m.PlayerB, &m.HandsPlanned, &m.DeckSeedBase, &m.TiePolicy,
		&m.StartedAt, &m.EndedAt, &m.HandsPlayed, &m.Aborted, &m.NetA)
	return m, err
}

func (db *DB) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.Query(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (db *DB) GetMatch(ctx context.Context, id uuid.UUID) (Match, []Participant, error) {
	m, err := scanMatch(db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Match{}, nil, ErrNotFound
	}
	if err != nil {
		return Match{}, nil, err
	}
	rows, err := db.Query(ctx, `
		SELECT label, name, hands_button, hands_blind, wins, net_chips,
		       check_ct, call_ct, bet_ct, raise_ct, fold_ct, elo
		  FROM match_participants WHERE match_id = $1 ORDER BY label
	`, id)
	if err != nil {
		return Match{}, nil, err
	}
	defer rows.Close()
	parts := []Participant{}
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.Label, &p.Name, &p.HandsButton, &p.HandsBlind, &p.Wins, &p.NetChips,
			&p.Checks, &p.Calls, &p.Bets, &p.Raises, &p.Folds, &p.Elo); err != nil {
			return Match{}, nil, err
		}
		parts = append(parts, p)
	}
	return m, parts, rows.Err()
}

func (db *DB) ListHands(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]HandRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := db.Query(ctx, `
		SELECT hand_id, hand_index, button_player, blind_player, pot, button_result, blind_result,
		       showdown, tie, winner, last_round, button_hand, blind_hand, created_at
		  FROM hand_results WHERE match_id = $1
		 ORDER BY hand_index OFFSET $2 LIMIT $3
	`, matchID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []HandRow{}
	for rows.Next() {
		var h HandRow
		if err := rows.Scan(&h.HandID, &h.Index, &h.ButtonPlayer, &h.BlindPlayer, &h.Pot,
			&h.ButtonResult, &h.BlindResult, &h.Showdown, &h.Tie, &h.Winner, &h.LastRound,
			&h.ButtonHand, &h.BlindHand, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// HandEvents replays a stored hand's actions in order.
func (db *DB) HandEvents(ctx context.Context, handID uuid.UUID) ([]Event, error) {
	rows, err := db.Query(ctx, `
		SELECT `+strings.Join(eventColumns[1:], ", ")+`
		  FROM hand_events WHERE hand_id = $1 ORDER BY seq
	`, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var (
			e                     Event
			actor, kind           string
			hand, held, handAfter []string
		)
		if err := rows.Scan(&e.Seq, &actor, &kind, &e.PotSize, &e.BetSize, &e.PotOdds,
			&hand, &held, &handAfter, &e.DrawsLeft, &e.CardsKept, &e.OpponentKept,
			&e.BetModel, &e.Value, &e.BetThisHand, &e.RoundPattern, &e.HandPattern,
			&e.TotalBet, &e.Result, &e.MarginBet, &e.MarginResult); err != nil {
			return nil, err
		}
		if err := e.Actor.UnmarshalText([]byte(actor)); err != nil {
			return nil, err
		}
		if e.Kind, err = engine.ParseActionKind(kind); err != nil {
			return nil, err
		}
		if e.Hand, err = parseCards(hand); err != nil {
			return nil, err
		}
		if e.BestDraw, err = parseCards(held); err != nil {
			return nil, err
		}
		if e.HandAfter, err = parseCards(handAfter); err != nil {
			return nil, err
		}
		e.Settled = true
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func parseCards(ss []string) ([]engine.Card, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]engine.Card, len(ss))
	for i, s := range ss {
		c, err := engine.ParseCard(s)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

