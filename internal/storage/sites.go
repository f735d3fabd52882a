package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/jackc/pgx/v5"
)

const siteColumns = `id, name, path, address, lat, long, stage, created_date, updated_date,
	market, metering, revenue_streams, layout`

func scanSite(row pgx.Row) (*types.Site, error) {
	var site types.Site
	var layoutJSON []byte

	err := row.Scan(
		&site.ID, &site.Name, &site.Path, &site.Address, &site.Lat, &site.Long,
		&site.Stage, &site.CreatedDate, &site.UpdatedDate, &site.Market, &site.Metering,
		&site.RevenueStreams, &layoutJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(layoutJSON) > 0 {
		if err := json.Unmarshal(layoutJSON, &site.Layout); err != nil {
			return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
		}
	}

	return &site, nil
}

func marshalLayout(layout types.Layout) ([]byte, error) {
	if layout == nil {
		return nil, nil
	}
	data, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return data, nil
}

// ListSites returns all sites, oldest first
func (p *PostgresClient) ListSites(ctx context.Context) ([]types.Site, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY created_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	sites := make([]types.Site, 0)
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, *site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}

	return sites, nil
}

// GetSite loads a single site by id
func (p *PostgresClient) GetSite(ctx context.Context, id string) (*types.Site, error) {
	site, err := scanSite(p.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

// CreateSite inserts a site and stamps created/updated dates
func (p *PostgresClient) CreateSite(ctx context.Context, site types.Site) (*types.Site, error) {
	now := p.now().Unix()
	site.CreatedDate = now
	site.UpdatedDate = now

	layoutJSON, err := marshalLayout(site.Layout)
	if err != nil {
		return nil, err
	}

	created, err := scanSite(p.pool.QueryRow(ctx, `
		INSERT INTO sites (id, name, path, address, lat, long, stage, created_date, updated_date,
			market, metering, revenue_streams, layout)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+siteColumns,
		site.ID, site.Name, site.Path, site.Address, site.Lat, site.Long, site.Stage,
		site.CreatedDate, site.UpdatedDate, site.Market, site.Metering, site.RevenueStreams, layoutJSON,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert site: %w", err)
	}

	return created, nil
}

// UpdateSite applies a partial update inside a transaction
func (p *PostgresClient) UpdateSite(ctx context.Context, id string, patch types.SitePatch) (*types.Site, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	site, err := scanSite(tx.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to lock site: %w", err)
	}

	patch.Apply(site)
	site.UpdatedDate = p.now().Unix()

	layoutJSON, err := marshalLayout(site.Layout)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE sites SET
			name = $2, path = $3, address = $4, lat = $5, long = $6, stage = $7,
			updated_date = $8, market = $9, metering = $10, revenue_streams = $11, layout = $12
		WHERE id = $1
	`, site.ID, site.Name, site.Path, site.Address, site.Lat, site.Long, site.Stage,
		site.UpdatedDate, site.Market, site.Metering, site.RevenueStreams, layoutJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to update site: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return site, nil
}
