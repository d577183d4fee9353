package http

import (
	"encoding/json"
	"log"
	"net/http"

	"iq-quiz-service/internal/app"
	"iq-quiz-service/internal/quiz"

	"github.com/gorilla/websocket"
)

// WSHandler drives one quiz session per websocket connection.
type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into a quiz
// session: name and policy come from the query, select/advance/reshuffle and
// result refetch from inbound messages, everything else is pushed as session
// events.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	policy, err := quiz.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), name, policy)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.EndSession(session.ID())

	events, cancel, err := h.service.Subscribe(session.ID())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- toOutbound(event):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: session.ID(), Name: name}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid select payload")
				continue
			}
			if err := h.service.SelectOption(session.ID(), payload.Option); err != nil {
				send <- errorMessage(err.Error())
			}
		case "advance":
			if err := h.service.Advance(session.ID()); err != nil {
				send <- errorMessage(err.Error())
			}
		case "reshuffle":
			if err := h.service.Reshuffle(r.Context(), session.ID()); err != nil {
				send <- errorMessage(err.Error())
			}
		case "result":
			result, err := h.service.Result(session.ID())
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: map[string]any{
				"result":  result,
				"answers": session.AnswerLog(),
				"status":  session.SubmitStatus(),
			}}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// toOutbound flattens a session event into the wire shape. Payloads carry
// only what the client may see.
func toOutbound(event app.Event) outboundMessage[any] {
	switch event.Type {
	case app.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: event.Question}
	case app.EventTick:
		return outboundMessage[any]{Type: "tick", Payload: map[string]int{"timeRemaining": event.TimeRemaining}}
	case app.EventExpired:
		return outboundMessage[any]{Type: "expired", Payload: map[string]int{"timeRemaining": 0}}
	case app.EventAnswer:
		return outboundMessage[any]{Type: "answer", Payload: event.Answer}
	case app.EventCompleted:
		return outboundMessage[any]{Type: "completed", Payload: map[string]any{
			"result":  event.Result,
			"answers": event.Answers,
		}}
	case app.EventSubmitStatus:
		return outboundMessage[any]{Type: "submitStatus", Payload: map[string]string{"status": string(event.Status)}}
	default:
		return outboundMessage[any]{Type: string(event.Type)}
	}
}
