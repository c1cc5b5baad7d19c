// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/api/utils"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/metrics"
	"github.com/quantidexyz/levr/runtime"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveConnections = metrics.LazyLoadGaugeVec("api_active_ws_connections", []string{"subject"})
	metricDroppedMessages   = metrics.LazyLoadCounter("api_ws_dropped_messages_count")
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = (pongWait * 7) / 10
)

type Subscriptions struct {
	upgrader   *websocket.Upgrader
	dispatcher *receiptDispatcher
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// New starts dispatching receipts of rt. allowedOrigins restricts browser clients, "*" allows any.
func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") ||
					slices.Contains(allowedOrigins, strings.ToLower(origin))
			},
		},
		dispatcher: newReceiptDispatcher(rt),
		done:       make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.dispatcher.DispatchLoop(s.done)
	}()
	return s
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	var (
		subject  = mux.Vars(req)["subject"]
		messages func(*runtime.Receipt) []any
	)
	switch subject {
	case "receipt":
		filter, err := parseReceiptFilter(req.URL.Query())
		if err != nil {
			return err
		}
		messages = receiptMessages(filter)
	case "event":
		filter, err := parseEventFilter(req.URL.Query())
		if err != nil {
			return err
		}
		messages = eventMessages(filter)
	default:
		return utils.NotFound(errors.New("unknown subject: " + subject))
	}

	// listen before the handshake completes so no receipt committed after it is missed
	ch := make(chan *runtime.Receipt, 64)
	s.dispatcher.Subscribe(ch)
	defer s.dispatcher.Unsubscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned after this point
	if err != nil {
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()

	metricActiveConnections().AddWithLabel(1, map[string]string{"subject": subject})
	defer metricActiveConnections().AddWithLabel(-1, map[string]string{"subject": subject})

	if err := s.pipe(conn, ch, messages); err != nil {
		logger.Debug("subscription closed", "subject", subject, "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan *runtime.Receipt, messages func(*runtime.Receipt) []any) error {
	defer conn.Close()

	// the read loop only serves control frames and detects the peer going away
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case r := <-ch:
			for _, msg := range messages(r) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
			}
		}
	}
}

// Close disconnects every subscriber.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
