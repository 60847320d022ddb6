package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/auth"
	"github.com/tokenforge/asset-gateway/pkg/authz"
	"github.com/tokenforge/asset-gateway/pkg/confirm"
	"github.com/tokenforge/asset-gateway/pkg/indexstore"
	"github.com/tokenforge/asset-gateway/pkg/portal"
	"github.com/tokenforge/asset-gateway/pkg/verification"
)

var validate = validator.New()

type handler struct {
	chain    *authz.Chain
	verifier verification.Service
	miner    *confirm.MiningWaiter
	indexer  *confirm.IndexWaiter
	store    *indexstore.Store
	logger   *zap.Logger
}

// mutationRequest is the payload for a policy-guarded mutation. The
// verification code is consumed in-process to derive the challenge response
// and is never persisted or logged.
type mutationRequest struct {
	SystemID           string          `json:"systemId"`
	To                 string          `json:"to" validate:"required"`
	Input              hexutil.Bytes   `json:"input"`
	Value              decimal.Decimal `json:"value"`
	VerificationMethod string          `json:"verificationMethod" validate:"required"`
	Code               string          `json:"code" validate:"required"`
	WaitForMining      bool            `json:"waitForMining"`
	// IndexAccount, when set, makes the call block until role assignments for
	// that account appear in the read model. Implies WaitForMining.
	IndexAccount string `json:"indexAccount"`
}

type transactionRequest struct {
	To                 string          `json:"to" validate:"required"`
	Input              hexutil.Bytes   `json:"input"`
	Value              decimal.Decimal `json:"value"`
	VerificationMethod string          `json:"verificationMethod" validate:"required"`
	Code               string          `json:"code" validate:"required"`
}

type transactionResponse struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	IndexAttempts   int    `json:"indexAttempts,omitempty"`
}

func (h *handler) submitMutation(w http.ResponseWriter, r *http.Request) error {
	mutation := chi.URLParam(r, "mutation")

	var body mutationRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if !auth.ValidateWalletAddress(body.To) {
		return apperrors.BadRequestError(nil, "invalid target address")
	}
	if body.IndexAccount != "" && !auth.ValidateWalletAddress(body.IndexAccount) {
		return apperrors.BadRequestError(nil, "invalid index account address")
	}
	method, err := verification.ParseMethod(body.VerificationMethod)
	if err != nil {
		return apperrors.BadRequestError(err, "unknown verification method")
	}

	req := &authz.Request{
		Mutation: mutation,
		Token:    bearerToken(r),
		SystemID: body.SystemID,
		Input: map[string]any{
			"to":    body.To,
			"value": body.Value.String(),
		},
	}

	var resp transactionResponse
	err = h.chain.Execute(r.Context(), req, func(ctx context.Context, req *authz.Request) error {
		ctx = auth.WithWalletAddress(ctx, req.Caller)
		ctx = auth.WithSystemID(ctx, req.System.ID)

		txHash, err := h.verifier.VerifyAndSubmit(ctx, req.Caller, method, body.Code, &portal.TransactionRequest{
			Address: common.HexToAddress(body.To),
			From:    req.Caller,
			Input:   body.Input,
			Value:   body.Value,
		})
		if err != nil {
			return err
		}
		resp.TransactionHash = txHash.Hex()

		if !body.WaitForMining && body.IndexAccount == "" {
			return nil
		}

		conf, err := h.miner.Wait(ctx, txHash)
		if err != nil {
			return err
		}
		resp.Status = conf.Receipt.Status
		resp.BlockNumber = conf.Receipt.BlockNumber

		if body.IndexAccount == "" {
			return nil
		}

		account := common.HexToAddress(body.IndexAccount)
		attempts, err := h.indexer.Wait(ctx, func(ctx context.Context) (bool, error) {
			return h.store.HasRoleAssignments(ctx, account)
		})
		if err != nil {
			return err
		}
		resp.IndexAttempts = attempts
		return nil
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, &resp)
}

func (h *handler) submitTransaction(w http.ResponseWriter, r *http.Request) error {
	var body transactionRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if !auth.ValidateWalletAddress(body.To) {
		return apperrors.BadRequestError(nil, "invalid target address")
	}
	method, err := verification.ParseMethod(body.VerificationMethod)
	if err != nil {
		return apperrors.BadRequestError(err, "unknown verification method")
	}

	req := &authz.Request{Token: bearerToken(r)}
	if err := h.chain.Authenticate(r.Context(), req); err != nil {
		return err
	}
	ctx := auth.WithWalletAddress(r.Context(), req.Caller)

	txHash, err := h.verifier.VerifyAndSubmit(ctx, req.Caller, method, body.Code, &portal.TransactionRequest{
		Address: common.HexToAddress(body.To),
		From:    req.Caller,
		Input:   body.Input,
		Value:   body.Value,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusAccepted, &transactionResponse{
		TransactionHash: txHash.Hex(),
	})
}

func (h *handler) waitForTransaction(w http.ResponseWriter, r *http.Request) error {
	hash := chi.URLParam(r, "hash")
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		return apperrors.BadRequestError(nil, "invalid transaction hash")
	}

	req := &authz.Request{Token: bearerToken(r)}
	if err := h.chain.Authenticate(r.Context(), req); err != nil {
		return err
	}

	conf, err := h.miner.Wait(r.Context(), common.HexToHash(hash))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, &transactionResponse{
		TransactionHash: conf.Receipt.TransactionHash.Hex(),
		Status:          conf.Receipt.Status,
		BlockNumber:     conf.Receipt.BlockNumber,
	})
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return apperrors.BadRequestError(err, "request validation failed")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
