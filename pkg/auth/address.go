package auth

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidateWalletAddress checks if a string is a valid EVM wallet address
func ValidateWalletAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	if len(address) != 42 {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}

// NormalizeAddress returns a checksummed wallet address
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

// IdentityFingerprint computes the stable fingerprint for a wallet address,
// used to correlate log lines and metrics without repeating the raw address.
func IdentityFingerprint(address common.Address) string {
	return crypto.Keccak256Hash(address.Bytes()).Hex()
}
