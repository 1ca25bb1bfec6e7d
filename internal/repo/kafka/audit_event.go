package kafka

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"

	"github.com/segmentio/kafka-go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	auditTopic    = "document-events"
	numPartitions = 3
)

// TopicConfig содержит настройки для создания топика
type TopicConfig struct {
	NumPartitions     int
	ReplicationFactor int
}

type AuditEventKafkaRepository struct {
	writer  *kafka.Writer
	brokers []string
}

// createTopicIfNotExists создает топик, если он не существует
func createTopicIfNotExists(ctx context.Context, brokers []string, topic string, config TopicConfig) error {
	// Подключаемся к любому из брокеров
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	topicExists, err := checkIfTopicExists(conn, topic)
	if err != nil {
		return err
	}
	if topicExists {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer func() { _ = controllerConn.Close() }()

	return controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     config.NumPartitions,
		ReplicationFactor: config.ReplicationFactor,
	})
}

// checkIfTopicExists проверяет, существует ли топик
func checkIfTopicExists(conn *kafka.Conn, topic string) (bool, error) {
	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		if errors.Is(err, kafka.UnknownTopicOrPartition) {
			return false, nil
		}
		return false, err
	}
	return len(partitions) > 0, nil
}

func NewAuditEventKafkaRepository(brokers []string) (repo.AuditEventRepository, error) {
	if len(brokers) == 0 {
		return nil, errors.New("не предоставлены брокеры Kafka")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Фактор репликации 1: поток аудита не критичен к потере брокера
	topicConfig := TopicConfig{
		NumPartitions:     numPartitions,
		ReplicationFactor: 1,
	}
	if err := createTopicIfNotExists(ctx, brokers, auditTopic, topicConfig); err != nil {
		return nil, err
	}

	return &AuditEventKafkaRepository{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    auditTopic,
			Balancer: &kafka.LeastBytes{},
		},
		brokers: brokers,
	}, nil
}

func (r *AuditEventKafkaRepository) PublishAuditEvent(ctx context.Context, event *entity.AuditEvent) error {
	// сериализация события
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(event.DocumentID)),
		Value: b,
	})
}

func (r *AuditEventKafkaRepository) SubscribeAuditEvents(ctx context.Context) (<-chan *entity.AuditEvent, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  r.brokers,
		Topic:    auditTopic,
		GroupID:  "audit-worker",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	ch := make(chan *entity.AuditEvent)
	go func() {
		defer close(ch)
		defer func() { _ = reader.Close() }()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				return
			}
			var event entity.AuditEvent
			if err := msgpack.Unmarshal(m.Value, &event); err == nil {
				ch <- &event
			}
		}
	}()
	return ch, nil
}
