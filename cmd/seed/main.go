package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-notes-rag-be/internal/config"
	"ai-notes-rag-be/internal/entity"
	"ai-notes-rag-be/internal/repository/implementation"
	"ai-notes-rag-be/pkg/database"
	"ai-notes-rag-be/pkg/embedding"
)

// Seeds a handful of notes and embeds them inline, so a fresh database can
// answer retrieval queries without waiting for the API consumer.
func main() {
	cfg := config.Load()

	db, err := database.NewPostgresDB(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}

	notes := implementation.NewNoteRepository(db)
	embeddings := implementation.NewNoteEmbeddingRepository(db)

	samples := []entity.Note{
		{
			Title:    "Go Concurrency Patterns",
			Content:  "Worker pools bound concurrent work with a fixed number of goroutines reading from a shared channel. Always close the jobs channel to let workers exit.",
			Tags:     "go,concurrency",
			Category: "engineering",
		},
		{
			Title:    "Pgvector Cosine Search",
			Content:  "The <=> operator returns cosine distance. Similarity is 1 minus the distance; an HNSW index keeps top-k queries fast.",
			Tags:     "postgres,pgvector",
			Category: "engineering",
		},
		{
			Title:    "Weekly Meal Plan",
			Content:  "Monday lentil soup, Tuesday roasted vegetables with rice, Wednesday pasta, Thursday leftovers, Friday homemade pizza.",
			Tags:     "cooking",
			Category: "personal",
		},
	}

	ctx := context.Background()
	for i := range samples {
		note := samples[i]
		note.CreatedAt = time.Now()

		if err := notes.Create(ctx, &note); err != nil {
			log.Fatalf("Error: Failed to create note %q: %v", note.Title, err)
		}

		document := fmt.Sprintf("Note Title: %s\nTags: %s\nCategory: %s\n\n%s",
			note.Title, note.Tags, note.Category, note.Content)

		vector, err := provider.Generate(ctx, document, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Fatalf("Error: Failed to embed note %q: %v", note.Title, err)
		}

		if err := embeddings.Upsert(ctx, note.Id, document, vector); err != nil {
			log.Fatalf("Error: Failed to upsert embedding for note %q: %v", note.Title, err)
		}

		log.Printf("Seeded note %d: %s", note.Id, note.Title)
	}

	log.Println("✅ Seeding complete")
}
