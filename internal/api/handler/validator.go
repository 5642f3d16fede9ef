package handler

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

// 自定义校验标签
const (
	yearMonthTag = "yearmonth" // yyyy-MM
	isoDateTag   = "isodate"   // yyyy-MM-dd
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义标签，重复调用无副作用
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// 错误信息使用 json/form 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		_ = v.RegisterValidation(yearMonthTag, layoutValidation(timetable.YearMonthLayout))
		_ = v.RegisterValidation(isoDateTag, layoutValidation(timetable.DateLayout))
	})
}

func layoutValidation(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != len(layout) {
			return false
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}
