package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_builder/data/repository"
	"github.com/KotFed0t/portfolio_builder/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// PutSnapshot stores items under key. A snapshot is immutable once written.
func (r *Postgres) PutSnapshot(ctx context.Context, key string, items []model.PortfolioItem) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.PutSnapshot"

	slog.Debug("PutSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.Int("items", len(items)))
	defer func() {
		if err != nil {
			slog.Error("PutSnapshot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("PutSnapshot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		err := r.insertSharedPortfolio(ctx, key)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		return r.insertSharedPortfolioItems(ctx, dbConverter.ConvertToSharedPortfolioItems(key, items))
	})
}

func (r *Postgres) insertSharedPortfolio(ctx context.Context, key string) error {
	query := `INSERT INTO shared_portfolios(portfolio_id) VALUES($1)`

	_, err := r.txOrDb(ctx).ExecContext(ctx, query, key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

func (r *Postgres) insertSharedPortfolioItems(ctx context.Context, items []dbModel.SharedPortfolioItem) error {
	sb := strings.Builder{}
	args := make([]any, 0, len(items)*4)

	sb.WriteString(`INSERT INTO shared_portfolio_items (portfolio_id, ordinal, ticker, portfolio_percentage) VALUES `)

	for i, item := range items {
		args = append(args, item.PortfolioID, item.Ordinal, item.Ticker, item.PortfolioPercentage)

		start := i*4 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", start, start+1, start+2, start+3))

		if i < len(items)-1 {
			sb.WriteString(",")
		}
	}

	_, err := r.txOrDb(ctx).ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *Postgres) GetSnapshot(ctx context.Context, key string) (items []model.PortfolioItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetSnapshot"
	query := `
		SELECT portfolio_id, dt_create
		FROM shared_portfolios
		WHERE portfolio_id = $1
		`

	slog.Debug("GetSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetSnapshot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetSnapshot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	shared := dbModel.SharedPortfolio{}
	err = r.txOrDb(ctx).GetContext(ctx, &shared, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	itemsQuery := `
		SELECT portfolio_id, ordinal, ticker, portfolio_percentage
		FROM shared_portfolio_items
		WHERE portfolio_id = $1
		ORDER BY ordinal
		`

	dbItems := make([]dbModel.SharedPortfolioItem, 0)
	err = r.txOrDb(ctx).SelectContext(ctx, &dbItems, itemsQuery, key)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertSharedPortfolioItems(dbItems), nil
}
