package account_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-account"
)

func newTestController(store *memStore) *account.AccountController {
	lc := newLifecycle(store, account.WithNotificationsDisabled())
	return account.NewAccountController(
		account.WithControllerLifecycle(lc),
		account.WithControllerLogger(testLogger{}),
	)
}

func TestNewAccountControllerRequiresLifecycle(t *testing.T) {
	require.Panics(t, func() {
		account.NewAccountController()
	})
}

func TestControllerBadge(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "user@example.com", account.StatusOn)

	ctrl := newTestController(store)

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = "user@example.com"
	ctx.On("Context").Return(context.Background())

	var payload map[string]any
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]any)
	}).Return(nil)

	err := ctrl.Badge(ctx)
	require.NoError(t, err)

	require.Equal(t, "SUCCESS", payload["status"])
	badge, ok := payload["user"].(*account.Badge)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", badge.ID)
	assert.Equal(t, account.StatusOn, badge.Status)

	ctx.AssertExpectations(t)
}

func TestControllerLogout(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "user@example.com", account.StatusOn)

	ctrl := newTestController(store)

	ctx := router.NewMockContext()
	ctx.QueriesM["id"] = "user@example.com"
	ctx.On("Context").Return(context.Background())

	var payload map[string]any
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]any)
	}).Return(nil)

	err := ctrl.Logout(ctx)
	require.NoError(t, err)

	require.Equal(t, "SUCCESS", payload["status"])
	assert.Equal(t, account.StatusOff, store.get("user@example.com").Status)

	ctx.AssertExpectations(t)
}

func TestControllerLogoutWrongStatus(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "user@example.com", account.StatusOff)

	ctrl := newTestController(store)

	ctx := router.NewMockContext()
	ctx.QueriesM["id"] = "user@example.com"
	ctx.On("Context").Return(context.Background())

	var payload map[string]any
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]any)
	}).Return(nil)

	err := ctrl.Logout(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", payload["status"])
	assert.Equal(t, "NOT_LOGGED", payload["code"])

	ctx.AssertExpectations(t)
}

func TestControllerPurge(t *testing.T) {
	store := newMemStore()
	ctrl := newTestController(store)

	ctx := router.NewMockContext()
	ctx.QueriesM["age_days"] = "30"
	ctx.On("Context").Return(context.Background())

	var payload map[string]any
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]any)
	}).Return(nil)

	err := ctrl.Purge(ctx)
	require.NoError(t, err)

	require.Equal(t, "SUCCESS", payload["status"])
	assert.Empty(t, payload["users"])

	ctx.AssertExpectations(t)
}

func TestControllerPurgeBadAge(t *testing.T) {
	ctrl := newTestController(newMemStore())

	ctx := router.NewMockContext()
	ctx.QueriesM["age_days"] = "not-a-number"

	var payload map[string]any
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]any)
	}).Return(nil)

	err := ctrl.Purge(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", payload["status"])
	assert.Equal(t, "MISSING_PARAMS", payload["code"])

	ctx.AssertExpectations(t)
}

func TestSignupPayloadValidate(t *testing.T) {
	valid := account.SignupPayload{Email: "user@example.com", Password: "s3cret-pass"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, account.SignupPayload{Password: "s3cret-pass"}.Validate())
	assert.Error(t, account.SignupPayload{Email: "user@example.com"}.Validate())
	assert.Error(t, account.SignupPayload{Email: "not-an-email", Password: "s3cret-pass"}.Validate())
	assert.Error(t, account.SignupPayload{Email: "user@example.com", Password: "short"}.Validate())
}

func TestLoginPayloadValidate(t *testing.T) {
	valid := account.LoginPayload{ID: "user@example.com", Password: "s3cret-pass"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, account.LoginPayload{Password: "s3cret-pass"}.Validate())
	assert.Error(t, account.LoginPayload{ID: "user@example.com"}.Validate())
}

func TestConfirmPayloadValidate(t *testing.T) {
	valid := account.ConfirmPayload{ID: "user@example.com", Token: "tok"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, account.ConfirmPayload{Token: "tok"}.Validate())
	assert.Error(t, account.ConfirmPayload{ID: "user@example.com"}.Validate())
}

func TestNewPasswordPayloadValidate(t *testing.T) {
	valid := account.NewPasswordPayload{ID: "user@example.com", Token: "tok", Password: "s3cret-pass"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, account.NewPasswordPayload{ID: "user@example.com", Token: "tok", Password: "short"}.Validate())
	assert.Error(t, account.NewPasswordPayload{ID: "user@example.com", Password: "s3cret-pass"}.Validate())
}

func TestPassportPayloadValidate(t *testing.T) {
	assert.NoError(t, account.PassportPayload{ID: "user@example.com"}.Validate())
	assert.Error(t, account.PassportPayload{}.Validate())
}
