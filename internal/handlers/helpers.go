package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/models"
)

// CurrentUserID reads the user id placed into the context by the token
// middleware.
func CurrentUserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	return id, nil
}

func CurrentUser(c echo.Context, db *gorm.DB) (*models.User, error) {
	id, err := CurrentUserID(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return &user, nil
}
