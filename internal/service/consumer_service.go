package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-notes-rag-be/internal/dto"
	"ai-notes-rag-be/internal/repository/contract"
	"ai-notes-rag-be/pkg/embedding"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	notes             contract.NoteRepository
	embeddings        contract.NoteEmbeddingRepository
	embeddingProvider embedding.Provider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	notes contract.NoteRepository,
	embeddings contract.NoteEmbeddingRepository,
	embeddingProvider embedding.Provider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		notes:             notes,
		embeddings:        embeddings,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedNoteMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing note embedding for NoteId: %d", payload.NoteId)

	note, err := cs.notes.FindByID(ctx, payload.NoteId)
	if err != nil {
		log.Printf("[ERROR] Failed to get note %d: %v", payload.NoteId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if note == nil {
		log.Printf("[ERROR] Note not found: %d", payload.NoteId)
		msg.Ack() // Note deleted? Ack.
		return
	}

	noteUpdatedAt := "-"
	if note.UpdatedAt != nil {
		noteUpdatedAt = note.UpdatedAt.Format(time.RFC3339)
	}

	document := fmt.Sprintf(`Note Title: %s
Tags: %s
Category: %s

%s

Created At: %s
Updated At: %s`,
		note.Title,
		note.Tags,
		note.Category,
		note.Content,
		note.CreatedAt.Format(time.RFC3339),
		noteUpdatedAt,
	)

	log.Printf("[INFO] Generating embedding for note %d (document length: %d)", payload.NoteId, len(document))

	vector, err := cs.embeddingProvider.Generate(ctx, document, embedding.TaskRetrievalDocument)
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for note %d: %v", payload.NoteId, err)
		msg.Nack()
		return
	}

	if err := cs.embeddings.Upsert(ctx, note.Id, document, vector); err != nil {
		log.Printf("[ERROR] Failed to upsert embedding for note %d: %v", payload.NoteId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Note embedded: NoteId: %d", payload.NoteId)
	msg.Ack()
}
