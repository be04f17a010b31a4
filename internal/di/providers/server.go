package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/kinshipapp/kinship-server/internal/api"
	"github.com/kinshipapp/kinship-server/internal/config"
	"github.com/kinshipapp/kinship-server/internal/logger"
	"github.com/kinshipapp/kinship-server/internal/mdns"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	avatarStorage := do.MustInvoke[*avatars.Storage](i)

	// Get all services
	instanceService := do.MustInvoke[*service.InstanceService](i)
	authHandle := do.MustInvoke[*AuthServiceHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	contactService := do.MustInvoke[*service.ContactService](i)
	tagService := do.MustInvoke[*service.TagService](i)
	eventService := do.MustInvoke[*service.EventService](i)
	dashboardService := do.MustInvoke[*service.DashboardService](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	services := &api.Services{
		Instance:  instanceService,
		Auth:      authHandle.AuthService,
		Session:   sessionService,
		Contact:   contactService,
		Tag:       tagService,
		Event:     eventService,
		Dashboard: dashboardService,
		Search:    searchService,
	}

	storage := &api.StorageServices{
		Avatars: avatarStorage,
	}

	handler := api.NewServer(storeHandle.Store, services, storage, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}

// MDNSServiceHandle wraps mdns.Service with Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.started && h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService provides the mDNS advertisement service.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	instanceService := do.MustInvoke[*service.InstanceService](i)

	ctx := context.Background()
	instance, err := instanceService.GetInstance(ctx)
	if err != nil {
		return nil, err
	}

	// Log server instance state
	if instance.SetupDone {
		log.Info("Server instance is configured and ready",
			"instance_id", instance.ID,
			"name", instance.Name,
		)
	} else {
		log.Warn("Server instance needs setup - no owner account configured",
			"instance_id", instance.ID,
			"setup_required", true,
		)
	}

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{Service: nil, started: false}, nil
	}

	svc := mdns.NewService(log.Logger)

	// Parse port
	port := 8080
	if _, err := fmt.Sscanf(cfg.Server.Port, "%d", &port); err != nil {
		log.Warn("Failed to parse server port for mDNS, using default", "port", cfg.Server.Port)
	}

	if err := svc.Start(instance, port); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
		// Non-fatal: server works without mDNS (e.g., Docker, cloud)
		return &MDNSServiceHandle{Service: svc, started: false}, nil
	}

	return &MDNSServiceHandle{Service: svc, started: true}, nil
}
