package security

import (
	"errors"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/util"
)

const resetTokenBytes = 32

// ResetTokenTTL is how long a password reset link stays redeemable.
const ResetTokenTTL = time.Minute * 30

// MakeResetToken mints a fresh password reset credential for a user.
// Persisting it (and retiring older live tokens) is the caller's job.
func MakeResetToken(userID string, now time.Time) (*model.ResetToken, error) {
	if userID == "" {
		return nil, errors.New("no user ID provided")
	}

	token, err := util.GenerateToken(resetTokenBytes)
	if err != nil {
		return nil, err
	}

	return &model.ResetToken{
		UserID:    userID,
		Token:     token,
		Used:      false,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}, nil
}
