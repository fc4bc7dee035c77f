package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/account"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profileUseCase *account.ProfileUseCase
}

func NewProfileHandler(profileUseCase *account.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profileUseCase: profileUseCase}
}

// Get
// @Summary      My profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=account.ProfileView}
// @Failure      401 {object} response.Response "not signed in"
// @Router       /api/v1/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	result, err := h.profileUseCase.Get(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update
// @Summary      Update my profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ProfileRequest true "profile"
// @Success      200 {object} response.Response{data=account.ProfileView}
// @Failure      400 {object} response.Response "invalid fields"
// @Failure      401 {object} response.Response "not signed in"
// @Router       /api/v1/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.profileUseCase.Update(c.Request.Context(), middleware.Principal(c), user.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UploadPhoto replaces the profile photo
// @Summary      Upload my photo
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        photo formData file true "jpeg, png, gif or webp image"
// @Success      200 {object} response.Response{data=account.ProfileView}
// @Failure      400 {object} response.Response "missing or invalid image"
// @Failure      401 {object} response.Response "not signed in"
// @Failure      503 {object} response.Response "file storage unavailable"
// @Router       /api/v1/profile/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	up, f, ok := formUpload(c, "photo")
	if !ok {
		return
	}
	defer f.Close()

	result, err := h.profileUseCase.UploadPhoto(c.Request.Context(), middleware.Principal(c), up)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
