package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type credentialRepo struct {
	drv *entsql.Driver
}

var _ CredentialRepo = (*credentialRepo)(nil)

func (r *credentialRepo) Load(ctx context.Context, slot string) (string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("token").
		From(entsql.Table(tableCredentials)).
		Where(entsql.EQ("slot", slot)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return "", fmt.Errorf("query credential: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var token string
	if err := rows.Scan(&token); err != nil {
		return "", fmt.Errorf("scan credential: %w", err)
	}
	return token, nil
}

func (r *credentialRepo) Save(ctx context.Context, slot, token string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableCredentials).
		Columns("slot", "token", "updated_at").
		Values(slot, token, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("slot"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (r *credentialRepo) Delete(ctx context.Context, slot string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableCredentials).
		Where(entsql.EQ("slot", slot)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
