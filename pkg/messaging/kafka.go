package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang-storefront-backend/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

type KafkaConsumer struct {
	brokers []string
	groupID string
	log     *logger.Logger
	mu      sync.Mutex
	readers map[string]*kafka.Reader
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func NewKafkaConsumer(log *logger.Logger, brokers []string, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
		log:     log.With("component", "kafka_consumer"),
		readers: make(map[string]*kafka.Reader),
	}
}

func (kp *KafkaProducer) writer(topic string) *kafka.Writer {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kp.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	kp.writers[topic] = writer
	return writer
}

// Publish JSON-encodes value and writes it to topic. Messages with the same
// key land on the same partition.
func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return kp.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	})
}

func (kp *KafkaProducer) Close() {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	for _, writer := range kp.writers {
		writer.Close()
	}
}

func (kc *KafkaConsumer) reader(topic string) *kafka.Reader {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	if reader, exists := kc.readers[topic]; exists {
		return reader
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kc.brokers,
		Topic:    topic,
		GroupID:  kc.groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	kc.readers[topic] = reader
	return reader
}

// Consume reads topic until ctx is cancelled and hands every message value to
// handler. Handler errors are logged and the message is committed anyway.
func (kc *KafkaConsumer) Consume(ctx context.Context, topic string, handler func(ctx context.Context, value []byte) error) {
	reader := kc.reader(topic)

	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			kc.log.Warn("Error reading message", "topic", topic, "error", err)
			continue
		}

		if err := handler(ctx, message.Value); err != nil {
			kc.log.Error("Error handling message", "topic", topic, "offset", message.Offset, "error", err)
		}
	}
}

func (kc *KafkaConsumer) Close() {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	for _, reader := range kc.readers {
		reader.Close()
	}
}
