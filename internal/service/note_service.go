package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ai-notes-rag-be/internal/dto"
	"ai-notes-rag-be/internal/entity"
	"ai-notes-rag-be/internal/repository/contract"
)

type INoteService interface {
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, id int64) (*dto.ShowNoteResponse, error)
	List(ctx context.Context) (*dto.ListNotesResponse, error)
	Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, id int64) error
}

type noteService struct {
	notes            contract.NoteRepository
	embeddings       contract.NoteEmbeddingRepository
	publisherService IPublisherService
}

func NewNoteService(
	notes contract.NoteRepository,
	embeddings contract.NoteEmbeddingRepository,
	publisherService IPublisherService,
) INoteService {
	return &noteService{
		notes:            notes,
		embeddings:       embeddings,
		publisherService: publisherService,
	}
}

func (s *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	note := entity.Note{
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Category:  req.Category,
		CreatedAt: time.Now(),
	}

	if err := s.notes.Create(ctx, &note); err != nil {
		return nil, err
	}

	if err := s.publishEmbed(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) Show(ctx context.Context, id int64) (*dto.ShowNoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, gorm.ErrRecordNotFound
	}
	res := toShowNoteResponse(note)
	return &res, nil
}

func (s *noteService) List(ctx context.Context) (*dto.ListNotesResponse, error) {
	notes, err := s.notes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.notes.Count(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.ListNotesResponse{
		Notes: make([]dto.ShowNoteResponse, 0, len(notes)),
		Total: total,
	}
	for _, note := range notes {
		res.Notes = append(res.Notes, toShowNoteResponse(note))
	}
	return res, nil
}

func (s *noteService) Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	note, err := s.notes.FindByID(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, gorm.ErrRecordNotFound
	}

	now := time.Now()
	note.Title = req.Title
	note.Content = req.Content
	note.Tags = req.Tags
	note.Category = req.Category
	note.UpdatedAt = &now

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	if err := s.publishEmbed(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) Delete(ctx context.Context, id int64) error {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return gorm.ErrRecordNotFound
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}

	// Remove the vector row so the deleted note can no longer surface as
	// retrieval evidence.
	return s.embeddings.DeleteByNoteId(ctx, id)
}

// publishEmbed enqueues the note for (re-)embedding by the background worker.
func (s *noteService) publishEmbed(ctx context.Context, noteId int64) error {
	payload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: noteId})
	if err != nil {
		return fmt.Errorf("marshal embed message: %w", err)
	}
	return s.publisherService.Publish(ctx, payload)
}

func toShowNoteResponse(note *entity.Note) dto.ShowNoteResponse {
	return dto.ShowNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
