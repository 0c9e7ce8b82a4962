package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
)

func TestSignupThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.auth.Signup(ctx, SignupInput{FullName: "A B", Username: "ab", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Empty(t, sess.User.Password)
	assert.Equal(t, "ab", sess.User.Username)
	assert.NotNil(t, sess.User.Watchlist)

	stored, err := env.stores.Accounts.FindByHandle(ctx, "ab")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)

	me, err := env.auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, me.ID)
	assert.Empty(t, me.Password)

	login, err := env.auth.Login(ctx, LoginInput{Username: "ab", Password: "secret1"}, ClientMeta{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, sess.User.ID, login.User.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "ab")

	_, wrongPass := env.auth.Login(ctx, LoginInput{Username: "ab", Password: "wrong1"}, ClientMeta{})
	_, noUser := env.auth.Login(ctx, LoginInput{Username: "nobody", Password: "secret1"}, ClientMeta{})

	require.Error(t, wrongPass)
	require.Error(t, noUser)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(wrongPass))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(noUser))
	assert.Equal(t, MsgInvalidCredentials, apperr.Message(wrongPass))
	assert.Equal(t, apperr.Message(wrongPass), apperr.Message(noUser))
}

func TestLoginIsAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.signup(t, "ab")
	meta := ClientMeta{IPAddress: "10.0.0.1", UserAgent: "curl"}

	_, _ = env.auth.Login(ctx, LoginInput{Username: "ab", Password: "nope12"}, meta)
	_, _ = env.auth.Login(ctx, LoginInput{Username: "ghost", Password: "nope12"}, meta)
	_, err := env.auth.Login(ctx, LoginInput{Username: "ab", Password: "secret1"}, meta)
	require.NoError(t, err)

	require.Len(t, env.audit.events, 3)
	assert.False(t, env.audit.events[0].Success)
	assert.Equal(t, user.ID.Hex(), env.audit.events[0].UserID)
	assert.Empty(t, env.audit.events[1].UserID)
	assert.True(t, env.audit.events[2].Success)
	assert.Equal(t, "10.0.0.1", env.audit.events[2].IPAddress)
	assert.Equal(t, "curl", env.audit.events[2].UserAgent)
}

func TestLoginSurvivesAuditFailure(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "ab")
	env.audit.err = errors.New("postgres down")

	_, err := env.auth.Login(context.Background(), LoginInput{Username: "ab", Password: "secret1"}, ClientMeta{})
	assert.NoError(t, err)
}

func TestSignupValidation(t *testing.T) {
	valid := SignupInput{FullName: "A B", Username: "ab", Email: "a@b.com", Password: "secret1"}

	tests := []struct {
		name string
		mod  func(*SignupInput)
		msg  string
	}{
		{"missing full name", func(in *SignupInput) { in.FullName = "  " }, "All fields are required"},
		{"missing password", func(in *SignupInput) { in.Password = "" }, "All fields are required"},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }, "Invalid email format"},
		{"short password", func(in *SignupInput) { in.Password = "12345" }, "Password must be at least 6 characters long"},
		{"short multibyte password", func(in *SignupInput) { in.Password = "ééé" }, "Password must be at least 6 characters long"},
		{"bad username", func(in *SignupInput) { in.Username = "a b" }, "Username can only contain letters, numbers, dots and underscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := valid
			tt.mod(&in)

			_, err := env.auth.Signup(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.Message(err))

			_, err = env.stores.Accounts.FindByEmail(context.Background(), "a@b.com")
			assert.True(t, apperr.Is(err, apperr.KindNotFound), "nothing may be written on validation failure")
		})
	}
}

func TestSignupConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Signup(ctx, SignupInput{FullName: "A B", Username: "ab", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.auth.Signup(ctx, SignupInput{FullName: "C D", Username: "ab", Email: "c@d.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, store.MsgUsernameTaken, apperr.Message(err))

	_, err = env.auth.Signup(ctx, SignupInput{FullName: "C D", Username: "cd", Email: "A@B.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, store.MsgEmailTaken, apperr.Message(err))
}

func TestAuthenticateRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Authenticate(ctx, "")
	assert.Equal(t, ReasonNoToken, apperr.Reason(err))

	_, err = env.auth.Authenticate(ctx, "garbage")
	assert.Equal(t, ReasonInvalidToken, apperr.Reason(err))

	orphan, _, err := env.auth.Tokens().Issue(primitive.NewObjectID())
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, orphan)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, ReasonUserNotFound, apperr.Reason(err))
	assert.Equal(t, MsgUserNotFound, apperr.Message(err))
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "ab")

	me, err := env.auth.Me(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "ab", me.Username)
	assert.Empty(t, me.Password)
}
