package pkg

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// 消息头，消费者据此分发而不必先解析 payload
const (
	HeaderEventType   = "event-type"
	HeaderContentType = "content-type"
	HeaderProducedAt  = "produced-at"
)

// Event 一条任务事件；Key 决定分区，同一社区的事件保持顺序
type Event struct {
	Key     string
	Type    string
	Payload []byte
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

func NewKafkaProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka brokers and topic are required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.WriteTimeout,
	}
	return newKafkaProducer(w, cfg.Topic), nil
}

func newKafkaProducer(w messageWriter, topic string) *KafkaProducer {
	return &KafkaProducer{writer: w, topic: topic, now: time.Now}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish 同步写入，返回前 broker 已确认
func (p *KafkaProducer) Publish(ctx context.Context, ev Event) error {
	if ev.Type == "" {
		return errors.New("kafka event type is required")
	}
	return p.writer.WriteMessages(ctx, p.message(ev))
}

func (p *KafkaProducer) message(ev Event) kafka.Message {
	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.Type)},
			{Key: HeaderContentType, Value: []byte("application/json")},
			{Key: HeaderProducedAt, Value: []byte(p.now().UTC().Format(time.RFC3339Nano))},
		},
	}
}

func MakeKeyFromID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
