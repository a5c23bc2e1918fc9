package user

import (
	"net/http"

	"github.com/cashplan/cashplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          int    `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Currency    string `json:"currency"`
	Locale      string `json:"locale"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

var errorMappings = []rest.Mapping{
	{Err: ErrNoUser, Status: http.StatusUnauthorized},
	{Err: ErrUserNotFound, Status: http.StatusNotFound},
}

// CurrentUser godoc
// @Summary Get current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Router /api/user/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")
	u, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(u))
}

// UpdateUser godoc
// @Summary Update current user settings
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Router /api/user/current [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating current user")
	var dto UserDTO
	if !rest.DecodeJSON(w, r, &dto) {
		return
	}
	updated, err := h.userService.UpdateCurrentUser(r.Context(), User{
		DisplayName: dto.DisplayName,
		Currency:    dto.Currency,
		Locale:      dto.Locale,
	})
	if err != nil {
		rest.Fail(w, err, errorMappings...)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

func toDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Currency:    u.Currency,
		Locale:      u.Locale,
	}
}
