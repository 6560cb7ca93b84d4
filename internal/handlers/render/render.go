package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	MissingFieldsError = "Missing required fields"
	InvalidFieldsError = "Invalid field values"
)

// Request bodies larger than that are rejected while decoding
const maxBodySize = 1 << 20

var validate = newValidator()

type Struct any

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	jsonWithStatus(w, data, code)
}

// Render {"message": ...} with status 200
func Message(w http.ResponseWriter, message string) {
	jsonWithStatus(w, MessageResponse{Message: message}, http.StatusOK)
}

// Render {"error": ...} with the status
func Error(w http.ResponseWriter, error string, code int) {
	jsonWithStatus(w, ErrorResponse{Error: error}, code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	var response ErrorResponse

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		response.Error = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	case errors.As(err, &sizeErr):
		response.Error = fmt.Sprintf("Request body is too large (maximum %d bytes)", sizeErr.Limit)
	default:
		response.Error = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors
// Absent required fields are reported as MissingFieldsError only, other failures with per field messages
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		Error:  InvalidFieldsError,
		Fields: make(map[string]string, len(errs)),
	}

	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			jsonWithStatus(w, ErrorResponse{Error: MissingFieldsError}, http.StatusBadRequest)
			return
		case "min", "gte":
			message = fmt.Sprintf("Value is too small (minimum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		response.Fields[fieldError.Field()] = message
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Empty body is decoded as empty object. Body is limited to 1MB, see BindAndValidateLimit.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	return BindAndValidateLimit[T](w, r, maxBodySize)
}

// BindAndValidateLimit is BindAndValidate with custom body limit in bytes; limit <= 0 means no limit
func BindAndValidateLimit[T Struct](w http.ResponseWriter, r *http.Request, limit int64) (T, error) {
	var value T

	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}

	dec := json.NewDecoder(body)
	err := dec.Decode(&value)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		DecodeError(w, err)
		return value, err
	default:
		// Body must be exactly one JSON value
		if err := expectEOF(dec); err != nil {
			DecodeError(w, err)
			return value, err
		}
	}

	err = validate.Struct(value)
	if err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			// Programming error: T is not a struct
			jsonWithStatus(w, ErrorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
			return value, err
		}
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

var errTrailingData = errors.New("unexpected data after JSON value")

func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
