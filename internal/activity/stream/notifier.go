package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/academiahub/backend/internal/common/constants"
	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/jwtverify"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/observability/metrics"
)

// UnreadSource computes the caller's unread activity count.
type UnreadSource interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// Notifier pushes unread-count updates over a websocket. The server
// owns the polling cadence, so a tab that goes away stops costing
// count queries as soon as its connection drops.
type Notifier struct {
	source   UnreadSource
	interval time.Duration
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewNotifier(source UnreadSource, interval time.Duration, log *logger.Logger) *Notifier {
	return &Notifier{
		source:   source,
		interval: interval,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
		},
	}
}

type countMessage struct {
	Unread int `json:"unread"`
}

func (n *Notifier) Handle(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.log.Warnf("notification stream upgrade failed: %v", err)
		return
	}

	metrics.NotificationStreamsActive.Inc()
	defer metrics.NotificationStreamsActive.Dec()

	n.log.WithFields(r.Context(), logger.Fields{
		"action":  "notification_stream_open",
		"user_id": claims.UserID,
	}).Debug("notification stream opened")

	n.run(r.Context(), conn, claims.UserID)
}

func (n *Notifier) run(ctx context.Context, conn *websocket.Conn, userID string) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
		return nil
	})

	// Read pump: the client never sends data frames, but control
	// frames are only processed while a read is pending. A read error
	// means the peer is gone and cancels the push loop.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !n.push(ctx, conn, userID) {
		return
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	pingTicker := time.NewTicker(constants.WebSocketPongWait / 3)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if !n.push(ctx, conn, userID) {
				return
			}
		}
	}
}

func (n *Notifier) push(ctx context.Context, conn *websocket.Conn, userID string) bool {
	count, err := n.source.UnreadCount(ctx, userID)
	if err != nil {
		// Transient store trouble should not tear the stream down;
		// the next tick retries.
		n.log.WithFields(ctx, logger.Fields{
			"action":  "notification_stream_count",
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("unread count failed")
		return true
	}

	conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
	if err := conn.WriteJSON(countMessage{Unread: count}); err != nil {
		return false
	}
	return true
}
