package tickers

import "context"

type Repository interface {
	Upsert(ctx context.Context, filter, text string) error
}
