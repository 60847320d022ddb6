package portal

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// Challenge is a one-time verification challenge issued by the portal for a
// wallet. The secret and salt are valid for a single attempt only; the portal
// consumes the challenge on use, successful or not.
type Challenge struct {
	ID               string `json:"id" validate:"required"`
	Secret           string `json:"secret" validate:"required"`
	Salt             string `json:"salt" validate:"required"`
	VerificationType string `json:"verificationType" validate:"required"`
}

// TransactionRequest is a privileged mutation submitted to the portal.
// ChallengeID and ChallengeResponse are filled in by the verification
// service; callers never set them directly.
type TransactionRequest struct {
	Address common.Address  `json:"address"`
	From    common.Address  `json:"from"`
	Input   hexutil.Bytes   `json:"input"`
	Value   decimal.Decimal `json:"value"`

	ChallengeID       string `json:"challengeId,omitempty"`
	ChallengeResponse string `json:"challengeResponse,omitempty"`
}

// Receipt mirrors the portal's view of a mined transaction.
type Receipt struct {
	Status          string          `json:"status"`
	RevertReason    string          `json:"revertReason,omitempty"`
	BlockNumber     uint64          `json:"blockNumber"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
	TransactionHash common.Hash     `json:"transactionHash"`
}

// Receipt status values reported by the portal.
const (
	StatusSuccess  = "Success"
	StatusReverted = "Reverted"
)

// Confirmation is the receipt plus indexer metadata, available once the
// transaction is mined. Absent (nil) until then.
type Confirmation struct {
	Receipt  *Receipt       `json:"receipt"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Reverted reports whether the confirmation carries a definitive revert.
func (c *Confirmation) Reverted() bool {
	return c != nil && c.Receipt != nil && c.Receipt.Status == StatusReverted
}
