package push

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/auth"
)

// joinMessage is the first frame a client must send after connecting. The
// token proves the caller owns the room it asks for.
type joinMessage struct {
	Event string `json:"event"`
	Room  string `json:"room"`
	Token string `json:"token"`
}

// authorizeJoin validates a join frame: the bearer token must parse and the
// requested room must match the token's subject. Room contents include
// ticket subjects and user names, so no cross-room listening.
func authorizeJoin(tokens *auth.TokenManager, join joinMessage) (string, error) {
	if join.Event != "join" || join.Room == "" {
		return "", errors.New("join frame required")
	}
	claims, err := tokens.ParseToken(join.Token)
	if err != nil {
		return "", err
	}
	if strconv.FormatInt(claims.UserID, 10) != join.Room {
		return "", errors.New("room does not match token subject")
	}
	return join.Room, nil
}

// Upgrade gates the websocket route: non-upgrade requests get 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves the /ws endpoint. A connection moves through
// connected -> joined -> disconnected: the client sends an authenticated
// join frame naming its room (user id), then receives envelopes until
// either side closes.
func Handler(hub *Hub, tokens *auth.TokenManager, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		var join joinMessage
		if err := conn.ReadJSON(&join); err != nil {
			logger.Debug("websocket closed before join", zap.Error(err))
			return
		}
		room, err := authorizeJoin(tokens, join)
		if err != nil {
			logger.Debug("websocket join rejected", zap.Error(err))
			return
		}

		client := hub.Join(room)
		defer hub.Leave(client)

		done := make(chan struct{})
		go func() {
			defer close(done)
			// Drain incoming frames; the client has nothing else to say, but
			// reading is how we notice the socket closing.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case env, ok := <-client.Receive():
				if !ok {
					return
				}
				data, err := json.Marshal(env)
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}
