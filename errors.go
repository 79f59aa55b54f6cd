package crowdfund

import "errors"

// Rejection reasons. A pledge that fails one of these checks is still
// recorded in the ledger, with status REJECTED and the error text as reason.
var (
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectExpired         = errors.New("project expired")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrRewardTierNotFound     = errors.New("reward tier not found")
	ErrRewardTierMismatch     = errors.New("reward tier does not belong to project")
	ErrRewardTierExhausted    = errors.New("reward tier exhausted")
	ErrAmountBelowTierMinimum = errors.New("amount below reward tier minimum")
)

// rejections lists the rejection reasons in validation order.
var rejections = []error{
	ErrProjectNotFound,
	ErrProjectExpired,
	ErrInvalidAmount,
	ErrRewardTierNotFound,
	ErrRewardTierMismatch,
	ErrRewardTierExhausted,
	ErrAmountBelowTierMinimum,
}

// IsRejection reports whether err is a pledge validation failure, as opposed
// to a storage failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

var (
	// ErrStorageFailure wraps any error returned by the record store.
	ErrStorageFailure = errors.New("storage failure")
	// ErrIntegrity is returned when an accepted pledge was recorded in the
	// ledger but its funding or quota effect could not be applied.
	ErrIntegrity = errors.New("ledger integrity warning")
)

// Record store errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrMissingKey   = errors.New("missing key")
)

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
