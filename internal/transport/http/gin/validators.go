package httpgin

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kirinyoku/cinebook/internal/domain"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the "city" and "seatcode" binding tags to gin's
// validator. It is safe to call more than once.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("httpgin: unexpected binding validator engine")
			return
		}

		if err := v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
			return domain.IsCity(fl.Field().String())
		}); err != nil {
			validatorsErr = err
			return
		}

		validatorsErr = v.RegisterValidation("seatcode", func(fl validator.FieldLevel) bool {
			return domain.IsSeatCode(fl.Field().String())
		})
	})

	return validatorsErr
}
