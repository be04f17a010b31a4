package providers

import (
	"github.com/samber/do/v2"

	"github.com/kinshipapp/kinship-server/internal/auth"
	"github.com/kinshipapp/kinship-server/internal/config"
	"github.com/kinshipapp/kinship-server/internal/logger"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/service"
)

// ProvideInstanceService provides the server instance service.
func ProvideInstanceService(i do.Injector) (*service.InstanceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInstanceService(storeHandle.Store, cfg, log.Logger), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// AuthServiceHandle wraps the auth service with shutdown capability.
type AuthServiceHandle struct {
	*service.AuthService
}

// Shutdown implements do.Shutdownable.
func (h *AuthServiceHandle) Shutdown() error {
	h.AuthService.Close()
	return nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*AuthServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	instanceService := do.MustInvoke[*service.InstanceService](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAuthService(storeHandle.Store, tokenService, sessionService, instanceService, log.Logger)
	return &AuthServiceHandle{AuthService: svc}, nil
}

// ProvideContactService provides the contact service.
func ProvideContactService(i do.Injector) (*service.ContactService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	avatarProcessor := do.MustInvoke[*avatars.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContactService(storeHandle.Store, indexHandle.SearchIndex, avatarProcessor, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	contactService := do.MustInvoke[*service.ContactService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, contactService, log.Logger), nil
}

// ProvideEventService provides the calendar event service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEventService(storeHandle.Store, log.Logger), nil
}

// ProvideDashboardService provides the dashboard aggregation service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	eventService := do.MustInvoke[*service.EventService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDashboardService(storeHandle.Store, eventService, log.Logger), nil
}
