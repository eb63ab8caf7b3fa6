package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/caseledger/internal/infrastructure/postgres/generated"
	"github.com/iho/caseledger/internal/usecase"
)

// queriesFor binds queries to tx when one is given, otherwise to fallback.
func queriesFor(tx usecase.Transaction, fallback *generated.Queries) *generated.Queries {
	if tx == nil {
		return fallback
	}
	return generated.New(tx.(*Tx).PgxTx())
}

// Type conversion helpers.
func nullDecimalToNumeric(d decimal.NullDecimal) pgtype.Numeric {
	var n pgtype.Numeric
	if !d.Valid {
		return n
	}

	_ = n.Scan(d.Decimal.String())

	return n
}

func numericToNullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN {
		return decimal.NullDecimal{}
	}

	d := decimal.NewFromBigInt(n.Int, n.Exp)

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
