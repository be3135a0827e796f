package store

import (
	"context"

	"fjacquet/pod-ledger/internal/models"
)

// AccountPath returns the account and its ancestors, root first. Parent links
// are not guaranteed acyclic; the walk stops at the first account seen twice.
func AccountPath(ctx context.Context, accounts AccountLookup, id uint) ([]models.Account, error) {
	var path []models.Account
	visited := make(map[uint]bool)

	next := &id
	for next != nil && !visited[*next] {
		account, err := accounts.GetAccount(ctx, *next)
		if err != nil {
			return nil, err
		}
		visited[account.ID] = true
		path = append([]models.Account{*account}, path...)
		next = account.ParentID
	}
	return path, nil
}
