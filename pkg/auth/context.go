package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyWalletAddress is the context key for the authenticated wallet address
	ContextKeyWalletAddress contextKey = "wallet_address"
	// ContextKeySystemID is the context key for the resolved system/tenant
	ContextKeySystemID contextKey = "system_id"
)

// WithWalletAddress adds the wallet address to the context
func WithWalletAddress(ctx context.Context, address common.Address) context.Context {
	return context.WithValue(ctx, ContextKeyWalletAddress, address)
}

// WalletAddressFromContext retrieves the wallet address from the context
func WalletAddressFromContext(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(ContextKeyWalletAddress).(common.Address)
	return addr, ok
}

// WithSystemID adds the system/tenant ID to the context
func WithSystemID(ctx context.Context, systemID string) context.Context {
	return context.WithValue(ctx, ContextKeySystemID, systemID)
}

// SystemIDFromContext retrieves the system/tenant ID from the context
func SystemIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeySystemID).(string)
	return id, ok
}
