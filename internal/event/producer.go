package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
	pkgkafka "github.com/Riiturii/oc-monvieuxgrimoire/pkg/kafka"
)

// Kafka topic constants for book domain events.
const (
	TopicBookCreated = "grimoire.book.created"
	TopicBookUpdated = "grimoire.book.updated"
	TopicBookDeleted = "grimoire.book.deleted"
	TopicBookRated   = "grimoire.book.rated"
)

// Aggregate type constant.
const AggregateTypeBook = "book"

// Source identifier for events originating from the catalog service.
const SourceCatalogService = "catalog-service"

// BookData is the payload for book.created and book.updated events.
type BookData struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Genre    string `json:"genre"`
	ImageURL string `json:"image_url"`
}

// BookDeletedData is the payload for a book.deleted event.
type BookDeletedData struct {
	ID string `json:"id"`
}

// BookRatedData is the payload for a book.rated event.
type BookRatedData struct {
	BookID        string  `json:"book_id"`
	UserID        string  `json:"user_id"`
	Grade         int     `json:"grade"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// Producer publishes book domain events to Kafka. A nil Producer is
// valid and publishes nothing, so Kafka can stay optional in dev.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, b *domain.Book) error {
	return p.publishBook(ctx, TopicBookCreated, b)
}

// PublishBookUpdated publishes a book.updated event.
func (p *Producer) PublishBookUpdated(ctx context.Context, b *domain.Book) error {
	return p.publishBook(ctx, TopicBookUpdated, b)
}

func (p *Producer) publishBook(ctx context.Context, topic string, b *domain.Book) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := BookData{
		ID:       b.ID,
		UserID:   b.UserID,
		Title:    b.Title,
		Author:   b.Author,
		Year:     b.Year,
		Genre:    b.Genre,
		ImageURL: b.ImageURL,
	}

	event, err := pkgkafka.NewEvent(topic, b.ID, AggregateTypeBook, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published book event",
		slog.String("topic", topic),
		slog.String("book_id", b.ID),
	)

	return nil
}

// PublishBookDeleted publishes a book.deleted event.
func (p *Producer) PublishBookDeleted(ctx context.Context, id string) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := BookDeletedData{ID: id}

	event, err := pkgkafka.NewEvent(TopicBookDeleted, id, AggregateTypeBook, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create book.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookDeleted, event); err != nil {
		return fmt.Errorf("publish book.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.deleted event",
		slog.String("book_id", id),
	)

	return nil
}

// PublishBookRated publishes a book.rated event.
func (p *Producer) PublishBookRated(ctx context.Context, b *domain.Book, userID string, grade int) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := BookRatedData{
		BookID:        b.ID,
		UserID:        userID,
		Grade:         grade,
		AverageRating: b.AverageRating,
		RatingCount:   len(b.Ratings),
	}

	event, err := pkgkafka.NewEvent(TopicBookRated, b.ID, AggregateTypeBook, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create book.rated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookRated, event); err != nil {
		return fmt.Errorf("publish book.rated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.rated event",
		slog.String("book_id", b.ID),
		slog.String("user_id", userID),
		slog.Int("grade", grade),
	)

	return nil
}
