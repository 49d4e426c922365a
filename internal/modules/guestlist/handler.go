package guestlist

import (
	"net/http"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/httpx"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GuestListHandler holds dependencies for guest-list HTTP handlers
type GuestListHandler struct {
	service *Service
}

func NewGuestListHandler(service *Service) *GuestListHandler {
	return &GuestListHandler{service: service}
}

// RegisterRoutes sets up the API routes for the guestlist module. The passed
// group is expected to already be gated by the auth middleware
func (h *GuestListHandler) RegisterRoutes(protectedGroup *echo.Group) {
	protectedGroup.GET("/guests", h.listGuestsHandler)
	protectedGroup.POST("/events/:id/guests", h.addGuestHandler)
}

// ListGuestsRequest defines the expected query parameters for listing guests
type ListGuestsRequest struct {
	EventID string `query:"eventId" validate:"required,uuid"`
	Cursor  string `query:"cursor"`
	Limit   int    `query:"limit" validate:"omitempty,min=0"`
}

// AddGuestRequest defines the expected JSON body for adding a guest
type AddGuestRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// GuestResponse defines the structure of a guest returned by the API
type GuestResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PageResponse defines the structure of a guest page returned by the API
type PageResponse struct {
	Items      []GuestResponse `json:"items"`
	NextCursor *string         `json:"next_cursor"`
}

func (h *GuestListHandler) listGuestsHandler(c echo.Context) error {
	var req ListGuestsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id format")
	}

	page, err := h.service.GetPage(c.Request().Context(), eventID, req.Cursor, req.Limit)
	if err != nil {
		return err
	}

	return httpx.SendSuccess(c, http.StatusOK, toPageResponse(page))
}

func (h *GuestListHandler) addGuestHandler(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id format")
	}

	var req AddGuestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	guest, err := h.service.AddGuest(c.Request().Context(), eventID, req.Name, req.Email)
	if err != nil {
		return err
	}

	return httpx.SendSuccess(c, http.StatusCreated, toGuestResponse(*guest))
}

func toGuestResponse(g Guest) GuestResponse {
	return GuestResponse{
		ID:        g.ID,
		Name:      g.Name,
		Email:     g.Email,
		CreatedAt: g.CreatedAt,
	}
}

// toPageResponse maps the internal Page to the public DTO. NextCursor is an
// explicit null at the end of the sequence rather than an omitted field
func toPageResponse(p *Page) PageResponse {
	items := make([]GuestResponse, len(p.Items))
	for i, g := range p.Items {
		items[i] = toGuestResponse(g)
	}

	resp := PageResponse{Items: items}
	if p.NextCursor != "" {
		cursor := p.NextCursor
		resp.NextCursor = &cursor
	}
	return resp
}
