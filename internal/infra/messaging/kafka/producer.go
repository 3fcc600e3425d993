package kafka

import (
	"context"
	"fmt"
	"strconv"

	"salesnotes/internal/domain/model"
	"salesnotes/internal/infra/encoding/avro"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// subset of *kgo.Client used here
type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// SaleEventProducer publishes SaleConfirmed events as Avro records keyed by
// note id, so every event of a note lands on the same partition.
type SaleEventProducer struct {
	client  recordProducer
	topic   string
	encoder *avro.Encoder
	log     *zap.Logger
}

func NewSaleEventProducer(brokers []string, topic string, log *zap.Logger) (*SaleEventProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	enc, err := avro.NewSaleConfirmedEncoder()
	if err != nil {
		return nil, err
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	if log != nil {
		log.Info("kafka producer ready", zap.Strings("brokers", brokers), zap.String("topic", topic))
	}
	return newSaleEventProducer(client, topic, enc, log), nil
}

func newSaleEventProducer(client recordProducer, topic string, enc *avro.Encoder, log *zap.Logger) *SaleEventProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SaleEventProducer{client: client, topic: topic, encoder: enc, log: log}
}

func (p *SaleEventProducer) PublishSaleConfirmed(ctx context.Context, ev model.SaleConfirmed) error {
	payload, err := p.encoder.EncodeSaleConfirmed(ev)
	if err != nil {
		return fmt.Errorf("encode sale event: %w", err)
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(strconv.FormatInt(ev.NoteID, 10)),
		Value:     payload,
		Timestamp: ev.OccurredAt.UTC(),
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(ev.EventID)},
			{Key: "content_type", Value: []byte("avro/binary")},
		},
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}

	p.log.Debug("sale event published",
		zap.Int64("note_id", ev.NoteID),
		zap.String("event_id", ev.EventID),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

func (p *SaleEventProducer) Close() {
	p.log.Info("closing kafka producer", zap.String("topic", p.topic))
	p.client.Close()
}
