// Package transport answers turn checks over NATS request/reply.
package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"turn-restrictions/internal/restriction"
)

// Gate decides a single from→to transition.
type Gate interface {
	Check(from, to restriction.EdgeID, mode restriction.Mode, t time.Time) (bool, *restriction.Restriction)
}

type ResponderMetrics interface {
	RequestInc(status string)
	SetConnected(connected bool)
}

type CheckRequest struct {
	From int64     `json:"from"`
	To   int64     `json:"to"`
	Mode string    `json:"mode"`
	Time time.Time `json:"time"` // zero means now
}

type CheckResponse struct {
	Allowed     bool   `json:"allowed"`
	Restriction string `json:"restriction,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Responder struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	gate    Gate
	logger  *zap.Logger
	metrics ResponderMetrics
	now     func() time.Time
}

// NewResponder connects to url and answers CheckRequests on subject. Several
// responders on the same subject share the load through a queue group.
func NewResponder(url, subject string, gate Gate, logger *zap.Logger, m ResponderMetrics) (*Responder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Responder{gate: gate, logger: logger, metrics: m, now: time.Now}
	nc, err := nats.Connect(url,
		nats.Name("restrictiond"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			r.setConnected(false)
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			r.setConnected(true)
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			r.setConnected(false)
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	r.nc = nc
	r.setConnected(true)

	sub, err := nc.QueueSubscribe(subject, "restrictiond", r.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	r.sub = sub
	logger.Info("answering turn checks", zap.String("subject", subject))
	return r, nil
}

func (r *Responder) Close() {
	if r.nc != nil {
		_ = r.nc.Drain()
	}
}

func (r *Responder) handle(msg *nats.Msg) {
	if err := msg.Respond(r.Answer(msg.Data)); err != nil {
		r.logger.Warn("respond to turn check", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

// Answer decodes a CheckRequest and encodes the CheckResponse for it.
func (r *Responder) Answer(data []byte) []byte {
	resp, status := r.answer(data)
	if r.metrics != nil {
		r.metrics.RequestInc(status)
	}
	b, _ := json.Marshal(resp)
	return b
}

func (r *Responder) answer(data []byte) (CheckResponse, string) {
	var req CheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return CheckResponse{Error: "invalid request: " + err.Error()}, "bad_request"
	}
	mode, err := restriction.ParseMode(req.Mode)
	if err != nil {
		return CheckResponse{Error: err.Error()}, "bad_request"
	}
	at := req.Time
	if at.IsZero() {
		at = r.now()
	}
	allowed, blocking := r.gate.Check(restriction.EdgeID(req.From), restriction.EdgeID(req.To), mode, at)
	if allowed {
		return CheckResponse{Allowed: true}, "allowed"
	}
	return CheckResponse{Restriction: blocking.String()}, "forbidden"
}

func (r *Responder) setConnected(b bool) {
	if r.metrics != nil {
		r.metrics.SetConnected(b)
	}
}
