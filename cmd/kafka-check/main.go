package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"localch-scraper/common"
	"localch-scraper/internal/config"
)

// kafka-check verifies that the listings broker is reachable and the topic exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	broker := cfg.KafkaBroker
	if broker == "" {
		broker = "localhost:9092"
	}
	timeout := common.EnvDuration("KAFKA_CHECK_TIMEOUT", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	count, err := topicPartitions(ctx, broker, cfg.KafkaTopic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kafka check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("connected to Kafka at %s (topic %s, %d partitions)\n", broker, cfg.KafkaTopic, count)
}

func topicPartitions(ctx context.Context, broker, topic string) (int, error) {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return 0, fmt.Errorf("connect to %s: %w", broker, err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		return 0, fmt.Errorf("read metadata for %s: %w", topic, err)
	}
	if len(partitions) == 0 {
		return 0, fmt.Errorf("topic %s has no partitions", topic)
	}
	return len(partitions), nil
}
