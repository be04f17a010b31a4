package providers

import (
	"github.com/samber/do/v2"

	"github.com/kinshipapp/kinship-server/internal/config"
	"github.com/kinshipapp/kinship-server/internal/logger"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
)

// ProvideAvatarStorage provides the contact avatar file storage.
func ProvideAvatarStorage(i do.Injector) (*avatars.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := avatars.NewStorage(cfg.AvatarsPath())
	if err != nil {
		return nil, err
	}

	log.Info("Avatar storage initialized", "path", cfg.AvatarsPath())

	return storage, nil
}

// ProvideAvatarProcessor provides the avatar image processor.
func ProvideAvatarProcessor(i do.Injector) (*avatars.Processor, error) {
	storage := do.MustInvoke[*avatars.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return avatars.NewProcessor(storage, log.Logger), nil
}
