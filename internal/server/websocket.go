package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"

	"github.com/cryguy/jsrun/internal/core"
)

// wsReply answers one script message.
type wsReply struct {
	SessionID string `json:"session_id"`
	Outcome   string `json:"outcome"`
	Body      string `json:"body"`
}

const wsWriteTimeout = 5 * time.Second

// handleWebSocket treats every text message as an independent script and
// answers each with one JSON reply.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	lang, err := core.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("jsrun: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.cfg.Server.MaxBodyBytes)

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Printf("jsrun: websocket read: %v", err)
				}
			}
			return
		}
		if typ != websocket.MessageText || !utf8.Valid(data) {
			conn.Close(websocket.StatusUnsupportedData, "scripts must be UTF-8 text messages")
			return
		}

		src := string(data)
		out := s.runner.ExecuteLang(ctx, lang, src)
		s.record(r, out, lang, src, "ws")

		reply, err := json.Marshal(wsReply{
			SessionID: out.SessionID,
			Outcome:   out.Kind.String(),
			Body:      out.Body(),
		})
		if err != nil {
			log.Printf("jsrun: encoding websocket reply: %v", err)
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, reply)
		cancel()
		if err != nil {
			log.Printf("jsrun: websocket write: %v", err)
			return
		}
	}
}
