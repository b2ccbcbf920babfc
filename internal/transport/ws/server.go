package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"realcoins/internal/protocol"
	"realcoins/internal/sim/world"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

const outQueue = 64

type Server struct {
	world *world.World
	log   *zap.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out, ok := s.handshake(conn)
		if !ok {
			return
		}
		log := s.log.With(zap.String("player", playerID.String()))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeInteract {
				queue(out, reject("", protocol.ErrProtoBadRequest, "expected INTERACT"))
				continue
			}
			var in protocol.InteractMsg
			if err := json.Unmarshal(msg, &in); err != nil {
				queue(out, reject("", protocol.ErrProtoBadRequest, "malformed INTERACT"))
				continue
			}
			if in.ProtocolVersion != protocol.Version {
				queue(out, reject(in.ID, protocol.ErrProtoBadRequest, "bad protocol_version"))
				continue
			}
			select {
			case s.world.Inbox() <- world.InteractEnvelope{PlayerID: playerID, Msg: in}:
			default:
				log.Warn("world inbox full", zap.String("ref", in.ID))
				queue(out, reject(in.ID, protocol.ErrWorldBusy, "world busy"))
			}
		}

		// Cleanup.
		s.world.Leave() <- playerID
		log.Info("player left")
	}
}

func (s *Server) handshake(conn *websocket.Conn) (modelpkg.PlayerID, chan []byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return modelpkg.PlayerID{}, nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return modelpkg.PlayerID{}, nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "malformed HELLO")
		return modelpkg.PlayerID{}, nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return modelpkg.PlayerID{}, nil, false
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}

	out := make(chan []byte, outQueue)
	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{Hello: hello, Out: out, Resp: respCh}
	resp := <-respCh
	if resp.Err != "" {
		closeWith(conn, resp.Code+": "+resp.Err)
		return modelpkg.PlayerID{}, nil, false
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return modelpkg.PlayerID{}, nil, false
	}
	id, err := modelpkg.ParsePlayerID(resp.Welcome.PlayerID)
	if err != nil {
		return modelpkg.PlayerID{}, nil, false
	}
	s.log.Info("player connected", zap.String("player", id.String()), zap.String("name", hello.PlayerName))
	return id, out, true
}

func reject(ref, code, msg string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		Verdict:         protocol.VerdictDeny,
		Code:            code,
		Message:         msg,
	}
}

// queue hands a message to the writer goroutine without blocking the reader.
func queue(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
