package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerAvatarRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getContactAvatar",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}/avatar",
		Summary:     "Get contact avatar",
		Description: "Redirects to the avatar image for a contact",
		Tags:        []string{"Avatars"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContactAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadContactAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts/{id}/avatar",
		Summary:     "Upload contact avatar",
		Description: "Uploads an avatar image for a contact",
		Tags:        []string{"Avatars"},
		Security:    []map[string][]string{{"bearer": {}}},
		// Default body cap is 1 MiB; allow one byte past the avatar limit
		// so the handler can answer oversized uploads itself.
		MaxBodyBytes: MaxAvatarUploadSize + 1,
	}, s.handleUploadContactAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContactAvatar",
		Method:      http.MethodDelete,
		Path:        "/api/v1/contacts/{id}/avatar",
		Summary:     "Delete contact avatar",
		Description: "Deletes the avatar image for a contact",
		Tags:        []string{"Avatars"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteContactAvatar)
}

// === DTOs ===

type GetContactAvatarInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

type AvatarRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

func (o *AvatarRedirectOutput) StatusCode() int {
	return o.Status
}

type UploadContactAvatarInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	RawBody       []byte
}

type AvatarResponse struct {
	BlurHash string `json:"blur_hash,omitempty" doc:"BlurHash placeholder string"`
}

type AvatarOutput struct {
	Body AvatarResponse
}

type DeleteContactAvatarInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// === Handlers ===

func (s *Server) handleGetContactAvatar(ctx context.Context, input *GetContactAvatarInput) (*AvatarRedirectOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Contact.GetContact(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if detail.AvatarPath == "" {
		return nil, huma.Error404NotFound("Contact has no avatar")
	}

	return &AvatarRedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: "/avatars/" + detail.AvatarPath,
	}, nil
}

func (s *Server) handleUploadContactAvatar(ctx context.Context, input *UploadContactAvatarInput) (*AvatarOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("Avatar image required")
	}
	if len(input.RawBody) > MaxAvatarUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Avatar image too large")
	}

	contact, err := s.services.Contact.UploadAvatar(ctx, userID, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &AvatarOutput{Body: AvatarResponse{BlurHash: contact.AvatarBlurhash}}, nil
}

func (s *Server) handleDeleteContactAvatar(ctx context.Context, input *DeleteContactAvatarInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Contact.DeleteAvatar(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Avatar deleted"}}, nil
}

// handleServeAvatar streams an avatar file, bypassing the JSON envelope.
func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	// The path is the contact ID, with or without a .jpg extension.
	id := chi.URLParam(r, "path")
	if id == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	if len(id) > 4 && id[len(id)-4:] == ".jpg" {
		id = id[:len(id)-4]
	}

	data, err := s.storage.Avatars.Get(id)
	if err != nil {
		http.Error(w, "avatar not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
