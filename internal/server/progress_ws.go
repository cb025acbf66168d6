package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/corpora/internal/ingest"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressEvent is the outgoing WebSocket message format. Type is
// "progress" for per-file updates, "report" for the final report, or
// "error" when the run could not start.
type progressEvent struct {
	Type           string         `json:"type"`
	FilesProcessed int            `json:"filesProcessed,omitempty"`
	Path           string         `json:"path,omitempty"`
	Report         *ingest.Report `json:"report,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// handleIngestWS accepts one ingestion request over a WebSocket and
// streams per-file progress back, ending with the full report. The
// connection is closed after the report is sent.
func (s *Server) handleIngestWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Printf("server: websocket read: %v", err)
		}
		return
	}

	var req ingestRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		s.sendEvent(conn, progressEvent{Type: "error", Error: "invalid message format"})
		return
	}
	if req.RepositoryPath == "" {
		s.sendEvent(conn, progressEvent{Type: "error", Error: "repositoryPath is required"})
		return
	}
	if err := s.validateModel(req.Model); err != nil {
		s.sendEvent(conn, progressEvent{Type: "error", Error: err.Error()})
		return
	}

	ingestor := s.newIngestor(func(filesProcessed int, path string) {
		s.sendEvent(conn, progressEvent{
			Type:           "progress",
			FilesProcessed: filesProcessed,
			Path:           path,
		})
	})

	report, err := ingestor.Run(r.Context(), req.RepositoryPath, req.options(s.cfg.IngestOpts))
	if err != nil {
		s.sendEvent(conn, progressEvent{Type: "error", Error: err.Error(), Report: report})
		return
	}

	s.sendEvent(conn, progressEvent{Type: "report", Report: report})
}

func (s *Server) sendEvent(conn *websocket.Conn, ev progressEvent) {
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
