package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	config "creatorhub/configs"
	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/transfer"
	"creatorhub/pkg/errs"
	"creatorhub/pkg/utils"
)

// PlatformService owns the connection lifecycle and routes requests to the
// right platform client. Connections are verified live before anything is
// stored: a connect with dead credentials never writes a row.
type PlatformService interface {
	Connect(ctx context.Context, creatorID int64, cc *transfer.ConnectionCreation) (int64, error)
	List(ctx context.Context, creatorID int64) ([]*models.PlatformConnection, error)
	Disconnect(ctx context.Context, id, creatorID int64) error
	SendMessage(ctx context.Context, creatorID int64, platform string, req *transfer.PlatformMessageRequest) (*transfer.PlatformMessage, error)
	ClientFor(platform string) (PlatformClient, error)
}

type platformService struct {
	cfg     config.Config
	pc      repository.PlatformConnectionRepository
	clients map[string]PlatformClient
}

func NewPlatformService(cfg config.Config, pc repository.PlatformConnectionRepository, clients ...PlatformClient) PlatformService {
	byName := make(map[string]PlatformClient, len(clients))
	for _, client := range clients {
		byName[client.Platform()] = client
	}
	return &platformService{cfg: cfg, pc: pc, clients: byName}
}

func (s *platformService) ClientFor(platform string) (PlatformClient, error) {
	client, ok := s.clients[platform]
	if !ok {
		return nil, errs.SchemaValidation("unknown platform " + platform)
	}
	return client, nil
}

func (s *platformService) Connect(ctx context.Context, creatorID int64, cc *transfer.ConnectionCreation) (int64, error) {
	if cc == nil || cc.AccessToken == "" {
		err := errors.New("access token cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	client, err := s.ClientFor(cc.Platform)
	if err != nil {
		return 0, err
	}

	encryptedAccess, err := utils.Encrypt([]byte(cc.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}
	encryptedRefresh := ""
	if cc.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(cc.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return 0, err
		}
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if cc.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(cc.ExpiresIn) * time.Second)
	}

	conn := models.PlatformConnection{
		CreatorID:      creatorID,
		Platform:       cc.Platform,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: expiresAt,
	}

	// Credentials are verified against the live platform before storage.
	profile, err := client.GetProfile(ctx, &conn)
	if err != nil {
		return 0, err
	}

	conn.Username = profile.Username
	conn.ProfileURL = profile.ProfileURL

	id, err := s.pc.Upsert(ctx, &conn)
	if err != nil {
		return 0, errs.Persistence("saving platform connection", err)
	}

	return id, nil
}

func (s *platformService) List(ctx context.Context, creatorID int64) ([]*models.PlatformConnection, error) {
	connections, err := s.pc.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, errs.Persistence("listing platform connections", err)
	}
	return connections, nil
}

func (s *platformService) Disconnect(ctx context.Context, id, creatorID int64) error {
	conn, err := s.pc.GetByID(ctx, id)
	if err != nil {
		return errs.Persistence("reading platform connection", err)
	}
	if conn == nil || conn.CreatorID != creatorID {
		return errs.NotFound("connection doesn't exist")
	}

	if err := s.pc.Remove(ctx, id, creatorID); err != nil {
		return errs.Persistence("removing platform connection", err)
	}
	return nil
}

// SendMessage routes through the platform's client. For a restricted
// platform the client itself refuses with ErrManualActionRequired before
// any network traffic.
func (s *platformService) SendMessage(ctx context.Context, creatorID int64, platform string, req *transfer.PlatformMessageRequest) (*transfer.PlatformMessage, error) {
	client, err := s.ClientFor(platform)
	if err != nil {
		return nil, err
	}

	conn, err := s.pc.GetByCreatorAndPlatform(ctx, creatorID, platform)
	if err != nil {
		return nil, errs.Persistence("reading platform connection", err)
	}
	if conn == nil {
		return nil, errs.NoConnections("platform " + platform + " is not connected")
	}

	return client.SendMessage(ctx, conn, req)
}
