package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SecretHandler serves the protected demo resource. All authorization happens
// in the gate middleware; by the time this runs the session is validated.
type SecretHandler struct{}

func NewSecretHandler() *SecretHandler {
	return &SecretHandler{}
}

type secretResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Show returns the gated content together with the authenticated identity.
//
// @Summary      Protected resource
// @Tags         secret
// @Produce      json
// @Success      200  {object}  secretResponse
// @Failure      401  {object}  map[string]string
// @Router       /secret [get]
func (h *SecretHandler) Show(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, secretResponse{
		Message: "access granted",
		Email:   sess.Email,
	})
}
