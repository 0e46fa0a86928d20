package dto

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// runTagPattern keeps tags usable as a file name suffix and a redis key part.
var runTagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	Validate = newValidator()
	trans    ut.Translator

	initOnce sync.Once
	initErr  error
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func newValidator() *validator.Validate {
	v := validator.New()

	//nolint:errcheck
	v.RegisterValidation("run_tag", func(fl validator.FieldLevel) bool {
		return runTagPattern.MatchString(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// InitValidator registers the english messages used by ValidateSingleError.
// It is safe to call more than once.
func InitValidator() error {
	initOnce.Do(func() {
		uni := ut.New(en.New(), en.New())
		trans, _ = uni.GetTranslator("en")

		if initErr = enTranslations.RegisterDefaultTranslations(Validate, trans); initErr != nil {
			return
		}

		initErr = Validate.RegisterTranslation("run_tag", trans,
			func(ut ut.Translator) error {
				return ut.Add("run_tag", "{0} may only contain letters, digits, '-' and '_'", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("run_tag", fe.Field())
				return t
			})
	})

	return initErr
}

// ValidateSingleError validates req and returns the first failure as a
// readable message.
func ValidateSingleError(req interface{}) error {
	if err := Validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			if trans == nil {
				return errors.New(ve[0].Error())
			}
			return errors.New(ve[0].Translate(trans))
		}
		return err
	}
	return nil
}
