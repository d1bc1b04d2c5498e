package authpad_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authpad/authpad"
	"github.com/authpad/authpad/mail"
	"github.com/authpad/authpad/store/memory"
)

var codeRE = regexp.MustCompile(`\d{4,10}`)

func testConfig() authpad.Config {
	cfg := authpad.DefaultConfig()
	cfg.Token.Secret = []byte("test-secret-key-0123456789abcdef")
	return cfg
}

func newTestEngine(t *testing.T, cfg authpad.Config) (*authpad.Engine, *memory.Store, *mail.Capture) {
	t.Helper()
	st := memory.New()
	capture := &mail.Capture{}
	eng, err := authpad.New().
		WithConfig(cfg).
		WithStore(st).
		WithMailer(capture).
		Build()
	require.NoError(t, err)
	return eng, st, capture
}

// lastCode pulls the verification code out of the most recently captured
// mail body.
func lastCode(t *testing.T, capture *mail.Capture) string {
	t.Helper()
	msgs := capture.Messages()
	require.NotEmpty(t, msgs)
	code := codeRE.FindString(msgs[len(msgs)-1].TextBody)
	require.NotEmpty(t, code)
	return code
}

// registerVerified walks a fresh account through registration and the full
// email-verification flow.
func registerVerified(t *testing.T, eng *authpad.Engine, capture *mail.Capture, email, pw string) *authpad.UserInfo {
	t.Helper()
	ctx := context.Background()

	info, err := eng.Register(ctx, authpad.RegisterRequest{Email: email, Password: pw})
	require.NoError(t, err)
	require.False(t, info.IsVerified)

	require.NoError(t, eng.RequestEmailVerification(ctx, email))
	require.NoError(t, eng.ConfirmEmailVerification(ctx, email, lastCode(t, capture)))
	return info
}

func TestBuildRequiresStoreAndMailer(t *testing.T) {
	cfg := testConfig()

	_, err := authpad.New().WithConfig(cfg).WithMailer(&mail.Capture{}).Build()
	require.Error(t, err)

	_, err = authpad.New().WithConfig(cfg).WithStore(memory.New()).Build()
	require.Error(t, err)

	_, err = authpad.New().WithStore(memory.New()).WithMailer(&mail.Capture{}).Build()
	require.Error(t, err) // default config has no secret
}

func TestBuildRejectsReuse(t *testing.T) {
	b := authpad.New().WithConfig(testConfig()).WithStore(memory.New()).WithMailer(&mail.Capture{})
	_, err := b.Build()
	require.NoError(t, err)
	_, err = b.Build()
	require.Error(t, err)
}

func TestCurrentUser(t *testing.T) {
	eng, _, capture := newTestEngine(t, testConfig())
	ctx := context.Background()

	info := registerVerified(t, eng, capture, "alice@example.com", "correct horse battery")
	pair, err := eng.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	id, err := eng.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, info.ID, id.ID)
	require.Equal(t, "alice@example.com", id.Email)
	require.True(t, id.Verified)
	require.True(t, id.Active)
	require.False(t, id.Superuser)
}

func TestCurrentUserRejectsGarbage(t *testing.T) {
	eng, _, _ := newTestEngine(t, testConfig())

	_, err := eng.CurrentUser(context.Background(), "not-a-token")
	require.ErrorIs(t, err, authpad.ErrTokenInvalid)
}

func TestCurrentUserRejectsDeactivated(t *testing.T) {
	eng, st, capture := newTestEngine(t, testConfig())
	ctx := context.Background()

	info := registerVerified(t, eng, capture, "alice@example.com", "correct horse battery")
	pair, err := eng.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, st.SetActive(ctx, info.ID, false))

	_, err = eng.CurrentUser(ctx, pair.AccessToken)
	require.ErrorIs(t, err, authpad.ErrTokenInvalid)
}

func TestLogoutWithoutRevoker(t *testing.T) {
	eng, _, capture := newTestEngine(t, testConfig())
	ctx := context.Background()

	registerVerified(t, eng, capture, "alice@example.com", "correct horse battery")
	pair, err := eng.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	res, err := eng.Logout(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.False(t, res.Revoked)
	require.NotEmpty(t, res.Message)

	// No denylist, so the token keeps working until it expires.
	_, err = eng.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestLogoutRejectsRefreshToken(t *testing.T) {
	eng, _, capture := newTestEngine(t, testConfig())
	ctx := context.Background()

	registerVerified(t, eng, capture, "alice@example.com", "correct horse battery")
	pair, err := eng.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = eng.Logout(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, authpad.ErrTokenInvalid)
}
