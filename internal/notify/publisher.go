package notify

import (
	"encoding/json"
	"fmt"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	zmq "github.com/pebbe/zmq4"
	"github.com/rs/zerolog"
)

// Publisher fans committed events out to external observers. Fire-and-forget:
// nothing here ever feeds back into the ledger.
type Publisher interface {
	Publish(event *entity.Event)
	Close()
}

// ZMQPublisher re-publishes each committed event on a PUB socket, topic-framed
// by event kind. The ledger service serializes calls, so subscribers see
// events in commit order.
type ZMQPublisher struct {
	socket *zmq.Socket
	logger zerolog.Logger
}

func NewZMQPublisher(bindAddr string, logger zerolog.Logger) (*ZMQPublisher, error) {
	s, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, fmt.Errorf("could not create the PUB socket: %w", err)
	}
	if err := s.Bind(fmt.Sprintf("tcp://%s", bindAddr)); err != nil {
		s.Close()
		return nil, fmt.Errorf("could not bind the PUB socket on %s: %w", bindAddr, err)
	}
	return &ZMQPublisher{socket: s, logger: logger}, nil
}

func (p *ZMQPublisher) Publish(event *entity.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Uint64("event_id", event.ID).Msg("could not encode event")
		return
	}
	if _, err := p.socket.SendMessage(string(event.Kind), payload); err != nil {
		// Observers are best-effort. The durable log already has the event.
		p.logger.Warn().Err(err).Uint64("event_id", event.ID).Msg("could not publish event")
	}
}

func (p *ZMQPublisher) Close() {
	if err := p.socket.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("could not close the PUB socket")
	}
}

// NopPublisher drops every event. Used in tests and when no bind address is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(*entity.Event) {}
func (NopPublisher) Close()                {}
