package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kinshipapp/kinship-server/internal/config"
	"github.com/kinshipapp/kinship-server/internal/domain"
	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
	"github.com/kinshipapp/kinship-server/internal/mdns"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// settingInstanceID is the settings key holding the server's stable UUID.
const settingInstanceID = "instance_id"

// InstanceService manages server instance identity and setup state.
type InstanceService struct {
	store  store.Store
	config *config.Config
	logger *slog.Logger
}

// NewInstanceService creates a new instance service.
func NewInstanceService(store store.Store, cfg *config.Config, logger *slog.Logger) *InstanceService {
	return &InstanceService{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// GetInstance returns this server's identity. The instance ID is generated
// on first call and persisted, so it stays stable across restarts.
func (s *InstanceService) GetInstance(ctx context.Context) (*domain.Instance, error) {
	instanceID, err := s.ensureInstanceID(ctx)
	if err != nil {
		return nil, err
	}

	setupDone, err := s.isSetupDone(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Instance{
		ID:        instanceID,
		Name:      s.config.Server.Name,
		LocalURL:  s.config.Server.LocalURL,
		RemoteURL: s.config.Server.RemoteURL,
		Version:   mdns.ServerVersion,
		SetupDone: setupDone,
	}, nil
}

// IsSetupRequired reports whether the server still needs its first user.
func (s *InstanceService) IsSetupRequired(ctx context.Context) (bool, error) {
	done, err := s.isSetupDone(ctx)
	if err != nil {
		return false, err
	}
	return !done, nil
}

func (s *InstanceService) isSetupDone(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// ensureInstanceID loads the persisted instance ID, generating one on first
// boot.
func (s *InstanceService) ensureInstanceID(ctx context.Context) (string, error) {
	instanceID, err := s.store.GetSetting(ctx, settingInstanceID)
	if err == nil {
		return instanceID, nil
	}
	if !domainerrors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("load instance ID: %w", err)
	}

	instanceID = uuid.NewString()
	if err := s.store.SetSetting(ctx, settingInstanceID, instanceID); err != nil {
		return "", fmt.Errorf("persist instance ID: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Generated new instance ID", "instance_id", instanceID)
	}

	return instanceID, nil
}
