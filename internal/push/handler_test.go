package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestAuthorizeJoin(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15)
	token, _, err := tokens.GenerateToken(7, domain.RoleUser)
	require.NoError(t, err)

	room, err := authorizeJoin(tokens, joinMessage{Event: "join", Room: "7", Token: token})
	require.NoError(t, err)
	assert.Equal(t, "7", room)
}

func TestAuthorizeJoin_ForeignRoomRejected(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15)
	token, _, err := tokens.GenerateToken(7, domain.RoleUser)
	require.NoError(t, err)

	// User 7's token does not open user 8's room.
	_, err = authorizeJoin(tokens, joinMessage{Event: "join", Room: "8", Token: token})
	assert.Error(t, err)
}

func TestAuthorizeJoin_BadToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15)

	_, err := authorizeJoin(tokens, joinMessage{Event: "join", Room: "7", Token: "not.a.token"})
	assert.Error(t, err)

	other := auth.NewTokenManager("other-secret", 15)
	token, _, genErr := other.GenerateToken(7, domain.RoleUser)
	require.NoError(t, genErr)
	_, err = authorizeJoin(tokens, joinMessage{Event: "join", Room: "7", Token: token})
	assert.Error(t, err)
}

func TestAuthorizeJoin_MalformedFrame(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 15)
	token, _, err := tokens.GenerateToken(7, domain.RoleUser)
	require.NoError(t, err)

	_, err = authorizeJoin(tokens, joinMessage{Event: "subscribe", Room: "7", Token: token})
	assert.Error(t, err)

	_, err = authorizeJoin(tokens, joinMessage{Event: "join", Room: "", Token: token})
	assert.Error(t, err)
}
