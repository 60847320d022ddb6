package verification

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/portal"
)

var validate = validator.New()

// DeriveResponse computes the challenge response proving possession of the
// user-supplied code without transmitting it:
//
//	hashedSecret = sha256hex(salt || code)
//	response     = sha256hex(hashedSecret || "_" || challengeSecret)
//
// The ledger-side verifier recomputes the same digest from its own record.
// A response is valid for exactly one challenge; reuse is rejected by the
// portal, not here.
func DeriveResponse(salt, code, challengeSecret string) string {
	hashedSecret := sha256Hex(salt + code)
	return sha256Hex(hashedSecret + "_" + challengeSecret)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// selectChallenge picks the challenge matching the verification method out of
// the portal's challenge list and validates its shape. An absent list or a
// challenge missing its secret or salt is detected locally and is fatal for
// this attempt: the caller must request a fresh challenge, never retry with
// the same one.
func selectChallenge(challenges []portal.Challenge, method Method) (*portal.Challenge, error) {
	if len(challenges) == 0 {
		return nil, apperrors.MalformedChallengeError(nil, "portal returned no challenges")
	}

	for i := range challenges {
		ch := &challenges[i]
		if ch.VerificationType != method.String() {
			continue
		}
		if err := validate.Struct(ch); err != nil {
			return nil, apperrors.MalformedChallengeError(err, "challenge is missing required fields")
		}
		return ch, nil
	}

	return nil, apperrors.MalformedChallengeError(
		fmt.Errorf("no challenge for method %s among %d challenges", method, len(challenges)),
		"portal returned no challenge for the requested verification method",
	)
}
