package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/hpmalinova/Expense-Tracker/logger"
	"github.com/hpmalinova/Expense-Tracker/query"
)

const maxBodyBytes = 1 << 20

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respondWithJSON(w http.ResponseWriter, code int, message string, payload interface{}) {
	response, err := json.Marshal(envelope{Success: code < 400, Message: message, Data: payload})
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"success":false,"message":"Internal Server Error","data":null}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, message, nil)
}

// respondWithValidationError answers 400 with the first failure as the message
// and every failing field under data.errors.
func respondWithValidationError(message string, fields map[string]string, w http.ResponseWriter) {
	respondWithJSON(w, http.StatusBadRequest, message, map[string]interface{}{"errors": fields})
}

// internalError logs err with the request's logger and hides it from the client.
func (a *App) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromContext(r.Context()).ErrorContext(r.Context(), msg, logger.FieldError, err)
	respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// validate runs the struct tags of s and writes the 400 response on failure.
func (a *App) validate(w http.ResponseWriter, s interface{}) bool {
	err := a.Validator.Struct(s)
	if err == nil {
		return true
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	// translate all error at once
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Translate(a.Translator)
	}
	respondWithValidationError(errs[0].Translate(a.Translator), fields, w)
	return false
}

func respondWithQueryError(w http.ResponseWriter, err error) bool {
	var fe *query.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	respondWithValidationError(fe.Error(), map[string]string{fe.Field: fe.Error()}, w)
	return true
}

// registerValidations names fields after their JSON keys and adds the isodate tag.
// NewValidator returns the request validator and its English translator.
// Field names in messages are the JSON keys.
func NewValidator() (*validator.Validate, ut.Translator, error) {
	v := validator.New()
	eng := en.New()
	uni := ut.New(eng, eng)

	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, nil, errors.New("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("register translations: %w", err)
	}
	if err := registerValidations(v, trans); err != nil {
		return nil, nil, err
	}
	return v, trans, nil
}

func registerValidations(v *validator.Validate, trans ut.Translator) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, _, err := query.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	return v.RegisterTranslation("isodate", trans,
		func(ut ut.Translator) error {
			return ut.Add("isodate", "{0} must be a date (YYYY-MM-DD or RFC3339)", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("isodate", fe.Field())
			return t
		},
	)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
