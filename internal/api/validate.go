package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"carestay-backend/internal/model"
)

var registerOnce sync.Once

// registerValidators adds the domain tags to gin's validator:
// sector, roomstatus, staytype and gir.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("sector", func(fl validator.FieldLevel) bool {
			return model.Sector(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("roomstatus", func(fl validator.FieldLevel) bool {
			return model.RoomStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("staytype", func(fl validator.FieldLevel) bool {
			return model.StayType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("gir", func(fl validator.FieldLevel) bool {
			return model.CareLevel(fl.Field().Int()).Valid()
		})
	})
}
