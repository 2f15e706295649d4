package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/curiosinfo/curiosinfo/internal/models"
	"github.com/curiosinfo/curiosinfo/internal/storage"
)

const actorColumns = `id, name, slug, actor_type, feed_url, confidence,
	lib_autor, indiv_col, natio_mon, prog_cons, created_at, updated_at`

func scanActor(row interface{ Scan(...any) error }) (*models.Actor, error) {
	var actor models.Actor
	var confidence sql.NullFloat64
	if err := row.Scan(
		&actor.ID,
		&actor.Name,
		&actor.Slug,
		&actor.ActorType,
		&actor.FeedURL,
		&confidence,
		&actor.LibAutor,
		&actor.IndivCol,
		&actor.NatioMon,
		&actor.ProgCons,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if confidence.Valid {
		actor.Confidence = &confidence.Float64
	}
	return &actor, nil
}

func (s *Store) GetAllActors(ctx context.Context) ([]models.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+actorColumns+` FROM actor ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	defer rows.Close()

	actors := make([]models.Actor, 0)
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, *actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, nil
}

func (s *Store) GetActor(ctx context.Context, id int) (*models.Actor, error) {
	actor, err := scanActor(s.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actor WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get actor %d: %w", id, err)
	}
	return actor, nil
}

func (s *Store) GetActorBySlug(ctx context.Context, slug string) (*models.Actor, error) {
	actor, err := scanActor(s.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actor WHERE slug = $1`, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get actor by slug %q: %w", slug, err)
	}
	return actor, nil
}

func (s *Store) CreateActor(ctx context.Context, params models.CreateActorParams) (*models.Actor, error) {
	actor, err := scanActor(s.db.QueryRowContext(ctx, `
		INSERT INTO actor (name, slug, actor_type, feed_url, lib_autor, indiv_col, natio_mon, prog_cons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+actorColumns,
		params.Name, params.Slug, params.ActorType, params.FeedURL,
		params.LibAutor, params.IndivCol, params.NatioMon, params.ProgCons,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("actor slug %q: %w", params.Slug, storage.ErrConflict)
		}
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return actor, nil
}

func (s *Store) UpdateActor(ctx context.Context, id int, params models.UpdateActorParams) (*models.Actor, error) {
	setParts := make([]string, 0, 8)
	args := make([]any, 0, 8)
	argPos := 1

	addSet := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.FeedURL != nil {
		addSet("feed_url", *params.FeedURL)
	}
	if params.ActorType != nil {
		addSet("actor_type", *params.ActorType)
	}
	if params.LibAutor != nil {
		addSet("lib_autor", *params.LibAutor)
	}
	if params.IndivCol != nil {
		addSet("indiv_col", *params.IndivCol)
	}
	if params.NatioMon != nil {
		addSet("natio_mon", *params.NatioMon)
	}
	if params.ProgCons != nil {
		addSet("prog_cons", *params.ProgCons)
	}
	if len(setParts) == 0 {
		return s.GetActor(ctx, id)
	}
	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	actor, err := scanActor(s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE actor SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(setParts, ", "), argPos, actorColumns),
		args...,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("actor %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("update actor %d: %w", id, err)
	}
	return actor, nil
}
