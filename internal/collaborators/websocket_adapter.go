package collaborators

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sawpanic/marketintel/internal/types"
)

// WebSocketAdapter is a reference streaming client for the market-data
// collaborator's real-time trade/book feed (§1: out of scope, treated
// as an external collaborator — implemented behind an interface as a
// thin reference client, not a production-hardened venue adapter).
type WebSocketAdapter struct {
	wsURL string

	mu   sync.RWMutex
	conn *websocket.Conn

	trades chan types.Trade
	books  chan types.OrderBookSnapshot
}

// NewWebSocketAdapter constructs an adapter against wsURL. Connect
// must be called before Trades/Books emit anything.
func NewWebSocketAdapter(wsURL string) *WebSocketAdapter {
	return &WebSocketAdapter{
		wsURL:  wsURL,
		trades: make(chan types.Trade, 256),
		books:  make(chan types.OrderBookSnapshot, 64),
	}
}

type wsEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type wsTradeMessage struct {
	TradeID      string  `json:"tradeId"`
	TokenID      string  `json:"tokenId"`
	TimestampMS  int64   `json:"timestampMs"`
	TakerAddress string  `json:"takerAddress"`
	Side         string  `json:"side"`
	Price        float64 `json:"price"`
	Size         float64 `json:"size"`
}

// Connect dials the upstream WebSocket and starts the read pump; the
// pump exits when ctx is cancelled or the connection errors, closing
// both output channels.
func (a *WebSocketAdapter) Connect(ctx context.Context, tokenIDs []types.TokenID) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.wsURL, nil)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()

	for _, tokenID := range tokenIDs {
		sub := map[string]interface{}{"action": "subscribe", "tokenId": tokenID}
		if writeErr := conn.WriteJSON(sub); writeErr != nil {
			conn.Close()
			return writeErr
		}
	}

	go a.readPump(ctx, conn)
	return nil
}

func (a *WebSocketAdapter) readPump(ctx context.Context, conn *websocket.Conn) {
	defer close(a.trades)
	defer close(a.books)
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var env wsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Channel {
		case "trade":
			var msg wsTradeMessage
			if json.Unmarshal(env.Data, &msg) != nil {
				continue
			}
			trade := types.Trade{
				TradeID:      msg.TradeID,
				TokenID:      types.TokenID(msg.TokenID),
				TimestampMS:  msg.TimestampMS,
				TakerAddress: msg.TakerAddress,
				Side:         types.Side(msg.Side),
				Price:        msg.Price,
				Size:         msg.Size,
			}
			select {
			case a.trades <- trade:
			case <-ctx.Done():
				return
			}
		case "book":
			var snapshot types.OrderBookSnapshot
			if json.Unmarshal(env.Data, &snapshot) != nil {
				continue
			}
			select {
			case a.books <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Trades is the live trade feed. Closed when the connection ends.
func (a *WebSocketAdapter) Trades() <-chan types.Trade { return a.trades }

// Books is the live order-book feed. Closed when the connection ends.
func (a *WebSocketAdapter) Books() <-chan types.OrderBookSnapshot { return a.books }

// Close closes the underlying connection if open.
func (a *WebSocketAdapter) Close() error {
	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
