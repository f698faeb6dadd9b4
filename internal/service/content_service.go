package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"creatorhub/internal/models"
	"creatorhub/internal/realtime"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
)

type ContentService interface {
	Upload(ctx context.Context, creatorID int64, cc *transfer.ContentCreation, file *multipart.FileHeader) (int64, error)
	Info(ctx context.Context, id, creatorID int64) (*models.ContentItem, error)
	List(ctx context.Context, creatorID int64) ([]*models.ContentItem, error)
	Remove(ctx context.Context, id, creatorID int64) error
	Analyze(ctx context.Context, contentID int64) error
}

type contentService struct {
	ci repository.ContentItemRepository
	r2 *R2Service
	ai AIService
	rt realtime.Publisher
}

func NewContentService(ci repository.ContentItemRepository, r2 *R2Service, ai AIService, rt realtime.Publisher) ContentService {
	return &contentService{ci: ci, r2: r2, ai: ai, rt: rt}
}

func (s *contentService) Upload(ctx context.Context, creatorID int64, cc *transfer.ContentCreation, file *multipart.FileHeader) (int64, error) {
	if cc == nil || cc.Title == "" {
		err := errors.New("title cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if file == nil {
		err := errors.New("no file provided")
		slog.Info(err.Error())
		return 0, err
	}

	fileContent, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return 0, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return 0, errors.New("unsupported file type")
	}

	mediaType, err := mediaTypeFor(fileType.MIME.Value)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return 0, fmt.Errorf("error uploading file: %w", err)
	}

	item := models.ContentItem{
		CreatorID: creatorID,
		Title:     cc.Title,
		MediaURL:  s.r2.PublicURL(key),
		MediaType: mediaType,
	}
	if cc.Description != "" {
		item.Description = &cc.Description
	}

	id, err := s.ci.Create(ctx, &item)
	if err != nil {
		return 0, errs.Persistence("creating content item", err)
	}

	return id, nil
}

func parseBestTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func mediaTypeFor(mime string) (string, error) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.MediaTypeImage, nil
	case strings.HasPrefix(mime, "video/"):
		return models.MediaTypeVideo, nil
	}
	return "", fmt.Errorf("file type %s is not allowed", mime)
}

func (s *contentService) Info(ctx context.Context, id, creatorID int64) (*models.ContentItem, error) {
	isValid, err := s.ci.CheckByCreatorID(ctx, id, creatorID)
	if err != nil {
		return nil, errs.Persistence("checking content item", err)
	}
	if !isValid {
		return nil, errs.NotFound("content doesn't exist")
	}

	item, err := s.ci.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("reading content item", err)
	}
	if item == nil {
		return nil, errs.NotFound("content doesn't exist")
	}
	return item, nil
}

func (s *contentService) List(ctx context.Context, creatorID int64) ([]*models.ContentItem, error) {
	items, err := s.ci.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, errs.Persistence("listing content items", err)
	}
	return items, nil
}

func (s *contentService) Remove(ctx context.Context, id, creatorID int64) error {
	isValid, err := s.ci.CheckByCreatorID(ctx, id, creatorID)
	if err != nil {
		return errs.Persistence("checking content item", err)
	}
	if !isValid {
		return errs.NotFound("content doesn't exist")
	}

	if err := s.ci.Remove(ctx, id, creatorID); err != nil {
		return errs.Persistence("removing content item", err)
	}
	return nil
}

// Analyze runs the AI pass over one item and persists the verdict. It is
// called from the queue worker, never from a request handler.
func (s *contentService) Analyze(ctx context.Context, contentID int64) error {
	item, err := s.ci.GetByID(ctx, contentID)
	if err != nil {
		return errs.Persistence("reading content item", err)
	}
	if item == nil {
		return errs.NotFound("content doesn't exist")
	}

	description := ""
	if item.Description != nil {
		description = *item.Description
	}

	analysis := s.ai.AnalyzeContent(ctx, item.Title, description, item.MediaType)

	bestTime, err := parseBestTime(analysis.BestTime)
	if err != nil {
		slog.Info(err.Error())
		bestTime, _ = parseBestTime(FallbackAnalysis().BestTime)
	}

	if err := s.ci.UpdateAIFields(ctx, contentID, analysis.Caption, analysis.Hashtags, bestTime, analysis.EngagementScore); err != nil {
		return errs.Persistence("saving analysis", err)
	}

	data, err := json.Marshal(map[string]interface{}{
		"content_id": contentID,
		"analysis":   analysis,
	})
	if err != nil {
		return err
	}

	if err := s.rt.Publish(ctx, realtime.ChannelContent, item.CreatorID, realtime.Event{
		Type: models.EventContentUpdated,
		Data: data,
	}); err != nil {
		slog.Info(err.Error())
	}
	return nil
}
