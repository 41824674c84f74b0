package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/frontend/telnet"
	"github.com/cory-johannsen/castle/internal/game/session"
)

// GameHandler gives every Telnet connection its own game. Network games
// cannot save: the save backends hold a single slot.
type GameHandler struct {
	content  *session.Content
	sessions *session.Manager
	logger   *zap.Logger
}

// NewGameHandler creates a handler building games from content.
//
// Precondition: all arguments are non-nil.
func NewGameHandler(content *session.Content, sessions *session.Manager, logger *zap.Logger) *GameHandler {
	return &GameHandler{content: content, sessions: sessions, logger: logger}
}

// HandleSession builds, registers and plays one game over conn.
//
// Postcondition: The game is closed and unregistered when this returns.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	g, err := session.NewGame(h.content, nil, h.logger)
	if err != nil {
		_ = conn.WriteLine("the castle is closed")
		return fmt.Errorf("building game: %w", err)
	}
	defer g.Close()

	addr := conn.RemoteAddr().String()
	if _, err := h.sessions.Add(g, addr); err != nil {
		return err
	}
	defer func() {
		if err := h.sessions.Remove(g.ID); err != nil {
			h.logger.Warn("unregistering session", zap.Error(err))
		}
	}()
	h.logger.Info("session opened",
		zap.Stringer("session", g.ID),
		zap.String("remote_addr", addr),
		zap.Int("active", h.sessions.Count()),
	)

	g.Start()
	return Play(ctx, g, conn)
}
