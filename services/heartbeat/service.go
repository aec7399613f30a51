package heartbeat

import (
	"context"
	"time"

	"envnode-go/bus"
)

const DefaultInterval = 10 * time.Second

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	// TopicPing carries the keep-alive.
	TopicPing = bus.T("env", "ping")
)

// Ping is the keep-alive payload.
type Ping struct {
	Message string `json:"message"`
	Time    int64  `json:"time"`
}

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(DefaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			conn.Publish(conn.NewMessage(TopicPing, Ping{Message: "Ping", Time: t.Unix()}, false))
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv * float64(time.Second)))
					println("Info:", "Heartbeat interval set to", iv, "seconds")
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
