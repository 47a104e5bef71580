package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaArchiver appends every published event to a Kafka topic for offline
// audit. Delivery is asynchronous; a full buffer or broker outage never
// blocks the hub.
type KafkaArchiver struct {
	writer *kafkago.Writer
	queue  chan kafkago.Message
	done   chan struct{}
}

func NewKafkaArchiver(brokers []string, topic string) *KafkaArchiver {
	a := &KafkaArchiver{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
		},
		queue: make(chan kafkago.Message, 1024),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Archive implements Sink. Drops the event when the buffer is full.
func (a *KafkaArchiver) Archive(topicName string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("event", evt.Event).Msg("archive: serialize event")
		return
	}
	msg := kafkago.Message{Key: []byte(topicName), Value: data}
	select {
	case a.queue <- msg:
	default:
		log.Warn().Str("event", evt.Event).Msg("archive: buffer full, event dropped")
	}
}

func (a *KafkaArchiver) run() {
	for {
		select {
		case msg := <-a.queue:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := a.writer.WriteMessages(ctx, msg); err != nil {
				log.Error().Err(err).Msg("archive: write to kafka")
			}
			cancel()
		case <-a.done:
			return
		}
	}
}

func (a *KafkaArchiver) Close() error {
	close(a.done)
	return a.writer.Close()
}
