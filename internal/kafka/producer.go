package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"localch-scraper/internal/models"
)

// ListingPublisher publishes scraped listings.
type ListingPublisher interface {
	WriteListing(ctx context.Context, runID, keyword string, record models.ListingRecord) error
}

// MessageWriter abstracts kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a Kafka writer for publishing listing events.
type Producer struct {
	writer MessageWriter
}

// NewProducer creates a Kafka producer for the given broker and topic. Listings
// are written one message per call, so the batch window is kept short instead
// of kafka-go's 1s default.
func NewProducer(broker, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: false,
			WriteTimeout:           10 * time.Second,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

// NewProducerWithWriter builds a producer using a custom writer (tests).
func NewProducerWithWriter(writer MessageWriter) *Producer {
	return &Producer{writer: writer}
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// WriteListing publishes one listing keyed by its URL, so re-scrapes of the
// same listing land on the same partition.
func (p *Producer) WriteListing(ctx context.Context, runID, keyword string, record models.ListingRecord) error {
	payload, err := models.NewListingEvent(runID, keyword, record)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:     []byte(record.URL),
		Value:   payload,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "run_id", Value: []byte(runID)}},
	}

	return p.writer.WriteMessages(ctx, msg)
}
