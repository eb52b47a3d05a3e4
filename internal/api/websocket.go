// internal/api/websocket.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/scriptecho/scriptreader/internal/services"
	"github.com/scriptecho/scriptreader/internal/utils"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Tighten this before exposing the server beyond localhost.
		return true
	},
}

const (
	wsWriteWait = 10 * time.Second
	wsPingEvery = 30 * time.Second
)

// progressMessage is the wire form of a progress push.
type progressMessage struct {
	TaskID    string `json:"task_id"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleProgressWS streams progress updates for one task over a WebSocket.
// The connection closes once the task reaches a terminal state or the client
// goes away.
func (h *Handler) handleProgressWS(c *gin.Context) {
	taskID := c.Param("taskID")

	tracker, exists := h.progress.GetTracker(taskID)
	if !exists {
		h.response.Error(c, http.StatusNotFound, ErrorTaskNotFound, "unknown task: "+taskID)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Warnf("websocket upgrade failed for task %s: %v", taskID, err)
		return
	}
	defer conn.Close()

	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	// Reader loop only drains control frames and detects disconnects.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingEvery)
	defer pingTicker.Stop()

	writeUpdate := func(update services.ProgressUpdate) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(progressMessage{
			TaskID:    taskID,
			Progress:  update.Progress,
			Message:   update.Message,
			Status:    update.Status,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := writeUpdate(update); err != nil {
				return
			}
			if update.Status != "running" {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, update.Status))
				return
			}

		case <-tracker.Done:
			return

		case <-clientGone:
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
