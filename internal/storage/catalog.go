package storage

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// ListDevices returns the device catalog table
func (p *PostgresClient) ListDevices(ctx context.Context) ([]types.Device, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT name, COALESCE(mfg, ''), category, length, width, cost, release_date,
		       capacity_kwh, COALESCE(color, ''), COALESCE(img, '')
		FROM devices
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make([]types.Device, 0)
	for rows.Next() {
		var d types.Device
		var category string
		if err := rows.Scan(&d.Name, &d.Manufacturer, &category, &d.Length, &d.Width, &d.Cost,
			&d.ReleaseDate, &d.CapacityKWh, &d.Color, &d.Image); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.Category = types.Category(category)
		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	return devices, nil
}

// ListCosts returns the cost multipliers table
func (p *PostgresClient) ListCosts(ctx context.Context) ([]types.CostMultiplier, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT name, display, sort, multiplier_type, multiplier
		FROM costs
		ORDER BY sort, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}
	defer rows.Close()

	costs := make([]types.CostMultiplier, 0)
	for rows.Next() {
		var c types.CostMultiplier
		var multiplierType string
		if err := rows.Scan(&c.Name, &c.Display, &c.Sort, &multiplierType, &c.Multiplier); err != nil {
			return nil, fmt.Errorf("failed to scan cost: %w", err)
		}
		c.MultiplierType = types.MultiplierType(multiplierType)
		costs = append(costs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate costs: %w", err)
	}

	return costs, nil
}
