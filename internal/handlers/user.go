package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nkiryanov/chatapi/internal/apperrors"
	"github.com/nkiryanov/chatapi/internal/handlers/render"
	"github.com/nkiryanov/chatapi/internal/handlers/userctx"
	"github.com/nkiryanov/chatapi/internal/logger"
	"github.com/nkiryanov/chatapi/internal/models"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

func handleListUsers(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := userService.ListUsers(r.Context())
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]userResponse, 0, len(users))
		for _, u := range users {
			res = append(res, toUserResponse(u))
		}
		render.JSON(w, res)
	})
}

func handleGetUser(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Not a number can't be an id of existed user
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			render.Error(w, "User not found", http.StatusNotFound)
			return
		}

		user, err := userService.GetUserByID(r.Context(), id)

		switch {
		case err == nil:
			render.JSON(w, toUserResponse(user))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to get user", "id", id, "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCreateUser(userService userService, l logger.Logger) http.Handler {
	// Pointers: empty string is a value, only absent field is missing
	type request struct {
		Username *string `json:"username" validate:"required"`
		Password *string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		_, err = userService.CreateUser(r.Context(), *data.Username, *data.Password)

		switch {
		case err == nil:
			render.Message(w, "User created successfully")
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.Error(w, "User already exists", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidText):
			render.Error(w, render.InvalidFieldsError, http.StatusBadRequest)
		default:
			l.Error("Failed to create user", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username *string `json:"username" validate:"required"`
		Password *string `json:"password" validate:"required"`
	}
	type response struct {
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), *data.Username, *data.Password)

		switch {
		case err == nil:
			authService.SetToken(w, token)
			render.JSON(w, response{Token: token.Value})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			l.Error("Failed to login", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		render.JSON(w, toUserResponse(user))
	})
}
