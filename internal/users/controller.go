package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/pagination"
)

type CreateUserDTO struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type SetPasswordDTO struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// CreatedUserResponse omits is_subscribed: nobody follows a fresh account.
type CreatedUserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func ToResponse(u *User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("invalid " + name)
	}
	return uint(id), nil
}

func CreateUserHandler(c *gin.Context) {
	var body CreateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}

	u, err := Register(c.Request.Context(), database.DB, RegisterInput{
		Email:     body.Email,
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreatedUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func ListUsersHandler(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.FromQuery(c)

	list, total, err := List(ctx, database.DB, page.Offset(), page.Limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	ids := make([]uint, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	subscribed, err := Subscribed(ctx, database.DB, CurrentViewer(c), ids)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	out := make([]UserResponse, len(list))
	for i := range list {
		out[i] = ToResponse(&list[i], subscribed[list[i].ID])
	}
	c.JSON(http.StatusOK, pagination.NewResponse(c, page, total, out))
}

func GetUserHandler(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	writeProfile(c, id)
}

func MeHandler(c *gin.Context) {
	viewer := CurrentViewer(c)
	if !viewer.Authenticated() {
		apperr.Respond(c, apperr.Unauthenticated())
		return
	}
	writeProfile(c, viewer.ID)
}

func writeProfile(c *gin.Context, id uint) {
	ctx := c.Request.Context()
	u, err := Get(ctx, database.DB, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	subscribed, err := Subscribed(ctx, database.DB, CurrentViewer(c), []uint{u.ID})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ToResponse(u, subscribed[u.ID]))
}

func SetPasswordHandler(c *gin.Context) {
	var body SetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	err := SetPassword(c.Request.Context(), database.DB, CurrentViewer(c), body.CurrentPassword, body.NewPassword)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
