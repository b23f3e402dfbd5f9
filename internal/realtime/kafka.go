package realtime

import (
	"context"
	"fmt"
	"time"

	"busline/internal/shared/config"
	"busline/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaNotifier publishes seat and booking updates through Kafka. It uses an
// async producer so state-machine transitions never wait on the broker, and
// a hash partitioner keyed by trip/booking id so messages for one trip land
// on one partition in commit order.
type KafkaNotifier struct {
	producer     sarama.AsyncProducer
	seatTopic    string
	bookingTopic string
	done         chan struct{}
	log          *logger.Logger
}

// NewKafkaNotifier creates a Kafka-backed change notifier
func NewKafkaNotifier(cfg config.KafkaConfig) (*KafkaNotifier, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	n := &KafkaNotifier{
		producer:     producer,
		seatTopic:    cfg.SeatTopic,
		bookingTopic: cfg.BookingTopic,
		done:         make(chan struct{}),
		log:          logger.GetDefault().WithComponent("realtime-notifier"),
	}

	// Failed deliveries are logged and dropped; at-most-once is acceptable
	go n.drainErrors()

	return n, nil
}

func (n *KafkaNotifier) drainErrors() {
	for {
		select {
		case err, ok := <-n.producer.Errors():
			if !ok {
				return
			}
			n.log.Warn("dropped realtime update", "topic", err.Msg.Topic, "error", err.Err)
		case <-n.done:
			return
		}
	}
}

// PublishSeatUpdate broadcasts a seat-availability delta for a trip
func (n *KafkaNotifier) PublishSeatUpdate(ctx context.Context, tripID string, seats map[int]bool) {
	msg := &SeatUpdateMessage{
		TripID:    tripID,
		Seats:     seats,
		Timestamp: time.Now(),
	}

	payload, err := msg.ToJSON()
	if err != nil {
		n.log.Warn("failed to marshal seat update", "trip_id", tripID, "error", err)
		return
	}

	n.send(ctx, &sarama.ProducerMessage{
		Topic: n.seatTopic,
		Key:   sarama.StringEncoder(tripID),
		Value: sarama.ByteEncoder(payload),
	})
}

// PublishBookingUpdate broadcasts a booking-status change
func (n *KafkaNotifier) PublishBookingUpdate(ctx context.Context, bookingID string, status string, message string) {
	msg := &BookingUpdateMessage{
		BookingID: bookingID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}

	payload, err := msg.ToJSON()
	if err != nil {
		n.log.Warn("failed to marshal booking update", "booking_id", bookingID, "error", err)
		return
	}

	n.send(ctx, &sarama.ProducerMessage{
		Topic: n.bookingTopic,
		Key:   sarama.StringEncoder(bookingID),
		Value: sarama.ByteEncoder(payload),
	})
}

// send enqueues without ever blocking the caller: if the producer's input
// buffer is full the update is dropped and logged
func (n *KafkaNotifier) send(ctx context.Context, msg *sarama.ProducerMessage) {
	select {
	case n.producer.Input() <- msg:
	case <-ctx.Done():
		n.log.Warn("dropped realtime update, context cancelled", "topic", msg.Topic)
	default:
		n.log.Warn("dropped realtime update, producer buffer full", "topic", msg.Topic)
	}
}

// Close shuts the producer down
func (n *KafkaNotifier) Close() error {
	close(n.done)
	return n.producer.Close()
}
