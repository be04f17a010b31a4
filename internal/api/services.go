package api

import (
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Instance  *service.InstanceService
	Auth      *service.AuthService
	Session   *service.SessionService
	Contact   *service.ContactService
	Tag       *service.TagService
	Event     *service.EventService
	Dashboard *service.DashboardService
	Search    *service.SearchService
}

// StorageServices groups file storage handlers used by the API server.
type StorageServices struct {
	Avatars *avatars.Storage // Contact profile photos
}
