package api

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"fieldexplorer/internal/models"
	"fieldexplorer/internal/validation"
)

// Favorites reconciles the favorite keyword list.
type Favorites interface {
	View(ctx context.Context) (models.FavoritesView, error)
	Add(ctx context.Context, keyword string) (models.FavoritesView, error)
	Remove(ctx context.Context, keyword string) (models.FavoritesView, error)
	Reconcile(ctx context.Context, remaining []string) (models.FavoritesView, error)
}

// FavoritesHandler handles the favorite keyword list via JSON API.
type FavoritesHandler struct {
	favorites Favorites
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(favorites Favorites) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

type addFavoriteRequest struct {
	Keyword string `json:"keyword"`
}

type reconcileRequest struct {
	Keywords []string `json:"keywords" validate:"required,max=10000,dive,name"`
}

// List returns the favorites and their recommendations.
func (h *FavoritesHandler) List(c fiber.Ctx) error {
	view, err := h.favorites.View(c.Context())
	if err != nil {
		return jsonStoreError(c, err)
	}
	return jsonSuccess(c, view)
}

// Add stores a keyword. Blank and duplicate keywords are accepted as no-ops.
func (h *FavoritesHandler) Add(c fiber.Ctx) error {
	var body addFavoriteRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.favorites.Add(c.Context(), body.Keyword)
	if err != nil {
		return jsonStoreError(c, err)
	}
	if view.Changed {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": view})
	}
	return jsonSuccess(c, view)
}

// Remove deletes the keyword named in the path.
func (h *FavoritesHandler) Remove(c fiber.Ctx) error {
	keyword, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword")
	}

	view, err := h.favorites.Remove(c.Context(), keyword)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return jsonSuccess(c, view)
}

// Reconcile deletes every stored keyword missing from the submitted list.
// The keywords array must be present; an empty array clears the list.
func (h *FavoritesHandler) Reconcile(c fiber.Ctx) error {
	var body reconcileRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.favorites.Reconcile(c.Context(), body.Keywords)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return jsonSuccess(c, view)
}
