package account

import (
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// ErrMissingID is returned when neither id nor email identify the account.
var ErrMissingID = goerrors.New("missing account identification (email)", goerrors.CategoryBadInput).
	WithTextCode("MISSING_ID").
	WithCode(goerrors.CodeBadRequest)

// ErrMissingPassword is returned when an operation requires a password and none was given.
var ErrMissingPassword = goerrors.New("missing account password", goerrors.CategoryBadInput).
	WithTextCode("MISSING_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrMissingParams is returned when a required argument is absent.
var ErrMissingParams = goerrors.New("missing required params", goerrors.CategoryBadInput).
	WithTextCode("MISSING_PARAMS").
	WithCode(goerrors.CodeBadRequest)

// ErrEmailMismatch is returned when id and email are both given but disagree.
var ErrEmailMismatch = goerrors.New("the email and id of an account are not the same", goerrors.CategoryValidation).
	WithTextCode("EMAIL_MISMATCH").
	WithCode(goerrors.CodeBadRequest)

// ErrStatusValue is returned for a status outside the STATUS enum.
var ErrStatusValue = goerrors.New("invalid value for enum STATUS", goerrors.CategoryValidation).
	WithTextCode("STATUS_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrGenderValue is returned for a gender outside the GENDER enum.
var ErrGenderValue = goerrors.New("invalid value for enum GENDER", goerrors.CategoryValidation).
	WithTextCode("GENDER_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrProfileValue is returned for a profile outside the PROFILE enum.
var ErrProfileValue = goerrors.New("invalid value for enum PROFILE", goerrors.CategoryValidation).
	WithTextCode("PROFILE_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrHash is returned when the hashing primitive fails. The operation is
// fatal, callers may retry the whole request.
var ErrHash = goerrors.New("error during password encryption", goerrors.CategoryInternal).
	WithTextCode("HASH_ERROR").
	WithCode(goerrors.CodeInternal)

// ErrWrongPassword is the expected outcome of a credential mismatch.
var ErrWrongPassword = goerrors.New("the password does not match the registered password", goerrors.CategoryAuth).
	WithTextCode("WRONG_PASSWORD").
	WithCode(goerrors.CodeUnauthorized)

// ErrNotLogged is returned when login/logout run from the wrong state.
var ErrNotLogged = goerrors.New("account not logged", goerrors.CategoryAuth).
	WithTextCode("NOT_LOGGED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMismatch is returned when the supplied token does not match the stored one.
var ErrTokenMismatch = goerrors.New("account token does not match", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenStale is returned when the stored token is past the configured
// validity window and can no longer be consumed.
var ErrTokenStale = goerrors.New("account token is no longer valid", goerrors.CategoryAuth).
	WithTextCode("TOKEN_STALE").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidStatus is returned when confirm runs outside {confirm, revive}.
var ErrInvalidStatus = goerrors.New("operation not allowed for the current account status", goerrors.CategoryConflict).
	WithTextCode("INVALID_STATUS").
	WithCode(goerrors.CodeConflict)

// ErrRandomSource is returned when the secure random source fails while
// minting a token. Not recovered locally.
var ErrRandomSource = goerrors.New("secure random source failed", goerrors.CategoryInternal).
	WithTextCode("RANDOM_SOURCE").
	WithCode(goerrors.CodeInternal)

// IsNotFound reports whether err is the store's record-not-found failure.
func IsNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || goerrors.IsNotFound(err)
}

// IsDuplicate reports whether err is the store's duplicate-id failure.
func IsDuplicate(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}
