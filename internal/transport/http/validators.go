package http

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	optionLetter = regexp.MustCompile(`^[A-D]$`)
)

// registerValidators installs the custom binding tags on gin's shared
// validator engine. Safe to call from every NewRouter.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Report JSON field names in validation errors, not Go names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("optionletter", func(fl validator.FieldLevel) bool {
			return optionLetter.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("gradelevel", func(fl validator.FieldLevel) bool {
			grade := fl.Field().Int()
			return grade >= 0 && grade <= 12
		})
	})
}
