package db

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"fieldexplorer/internal/storage"
)

const storeName = "postgres"

// classify maps a pgx error onto the storage error classes.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UndefinedTable:
			return storage.SchemaMissing(storeName, op, err)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsInvalidAuthorizationSpecification(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code):
			return storage.Unavailable(storeName, op, err)
		default:
			return storage.QueryFailed(storeName, op, err)
		}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return storage.Unavailable(storeName, op, err)
	case errors.As(err, &connErr), errors.As(err, &netErr):
		return storage.Unavailable(storeName, op, err)
	}

	return storage.QueryFailed(storeName, op, err)
}
