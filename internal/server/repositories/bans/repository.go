package bans

import "context"

type Repository interface {
	Insert(ctx context.Context, filter, reason string) error
	Delete(ctx context.Context, filter string) error
}
