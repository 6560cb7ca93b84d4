package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/nkiryanov/chatapi/internal/apperrors"
	"github.com/nkiryanov/chatapi/internal/handlers/render"
	"github.com/nkiryanov/chatapi/internal/logger"
)

// Message length is not bounded
const noBodyLimit = 0

func handleListMessages(messageService messageService, l logger.Logger) http.Handler {
	type message struct {
		Message string `json:"message"`
		Author  string `json:"author"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Info("Received request", "method", r.Method, "path", r.URL.Path)

		messages, err := messageService.ListForRecipient(r.Context(), r.PathValue("username"))
		if err != nil {
			l.Error("Failed to list messages", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]message, 0, len(messages))
		for _, m := range messages {
			res = append(res, message{Message: m.Body, Author: m.Author})
		}
		render.JSON(w, res)
	})
}

func handleSendMessage(messageService messageService, l logger.Logger) http.Handler {
	// Absent fields are zero: ids 0 and empty message
	type request struct {
		AuthorID    numericID `json:"author_id" validate:"gte=0"`
		RecipientID numericID `json:"recipient_id" validate:"gte=0"`
		Message     string    `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Info("Received request", "method", r.Method, "path", r.URL.Path)

		data, err := render.BindAndValidateLimit[request](w, r, noBodyLimit)
		if err != nil {
			return
		}

		_, err = messageService.Send(r.Context(), int64(data.AuthorID), int64(data.RecipientID), data.Message)

		switch {
		case err == nil:
			render.Message(w, "Message sent")
		case errors.Is(err, apperrors.ErrInvalidText):
			render.Error(w, render.InvalidFieldsError, http.StatusBadRequest)
		default:
			l.Error("Failed to send message", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// numericID accepts JSON integer or string holding one ("5"); null leaves zero
type numericID int64

func (n *numericID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	raw, kind := string(data), "number"
	if len(data) > 0 && data[0] == '"' {
		kind = "string"
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: kind + " " + raw, Type: reflect.TypeFor[int64]()}
	}

	*n = numericID(v)
	return nil
}
