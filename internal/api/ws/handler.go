package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

const writeWait = 10 * time.Second

// Ticker produces one tick per call
type Ticker interface {
	GenerateTicker(ctx context.Context, symbol string) (types.MarketTicker, error)
}

// Config controls the stream cadence
type Config struct {
	Interval    time.Duration // time between ticks
	TickTimeout time.Duration // deadline for producing one tick, retries included
}

// Handler streams market ticks over WebSocket
type Handler struct {
	ticker   Ticker
	cfg      Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates a ticker stream handler. CORS middleware guards the
// upgrade, so the upgrader itself accepts any origin.
func NewHandler(ticker Ticker, cfg Config, logger *logging.Logger) *Handler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.TickTimeout <= 0 || cfg.TickTimeout > cfg.Interval {
		cfg.TickTimeout = cfg.Interval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		ticker: ticker,
		cfg:    cfg,
		logger: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WithMetrics attaches a metrics collector
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// Stream upgrades the connection and pushes ticks for :symbol until the
// client goes away.
func (h *Handler) Stream(c *gin.Context) {
	symbol := c.Param("symbol")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("symbol", symbol), zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("conn_id", uuid.NewString()), zap.String("symbol", symbol))
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	log.Info("websocket connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go h.drain(conn, cancel)

	reason := h.loop(ctx, conn, log, symbol)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	log.Info("websocket disconnected", zap.String("reason", reason))
}

// loop sends one tick immediately and then one per interval. It returns
// why the stream ended.
func (h *Handler) loop(ctx context.Context, conn *websocket.Conn, log *logging.Logger, symbol string) string {
	interval := time.NewTicker(h.cfg.Interval)
	defer interval.Stop()

	for {
		tick, err := h.tick(ctx, symbol)
		if ctx.Err() != nil {
			return "client gone"
		}
		if err != nil {
			log.Warn("cannot produce tick", zap.Error(err))
			_ = h.write(conn, gin.H{"error": err.Error()}, "error")
			return "tick failed"
		}
		if err := h.write(conn, tick, "ticker"); err != nil {
			log.Debug("websocket write failed", zap.Error(err))
			return "write failed"
		}

		select {
		case <-ctx.Done():
			return "client gone"
		case <-interval.C:
		}
	}
}

func (h *Handler) tick(ctx context.Context, symbol string) (types.MarketTicker, error) {
	tickCtx, cancel := context.WithTimeout(ctx, h.cfg.TickTimeout)
	defer cancel()
	return h.ticker.GenerateTicker(tickCtx, symbol)
}

func (h *Handler) write(conn *websocket.Conn, v interface{}, msgType string) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(v); err != nil {
		return err
	}
	h.metrics.RecordWSMessage("out", msgType)
	return nil
}

// drain reads and discards client frames; any read error ends the stream
func (h *Handler) drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		h.metrics.RecordWSMessage("in", "client")
	}
}
