package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

// GetSettlementRun retrieves one stored settlement payload by ID.
func (d Datasource) GetSettlementRun(ctx context.Context, settlementID string) (*model.Settlement, error) {
	var payload []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT payload
		FROM settle.settlement_runs
		WHERE settlement_id = $1
	`, settlementID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Settlement run '%s' not found", settlementID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve settlement run", err)
	}

	settlement := model.Settlement{}
	if err := json.Unmarshal(payload, &settlement); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal settlement payload", err)
	}

	return &settlement, nil
}
