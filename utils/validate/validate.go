package validate

import (
	"fmt"
	"imagegate/internal/core"
	cErr "imagegate/internal/pkg/error"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// 輸出格式化的 validator error（欄位 json 名/型別/規則列表）
func ValidationErrorResponse(c *gin.Context, obj interface{}, err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var b strings.Builder
		b.WriteString("Validation error:\n")
		for _, fe := range errs {
			field := jsonFieldName(obj, fe.StructField())
			ftype := fieldType(obj, fe.StructField())
			format := getFieldFormat(obj, fe.StructField())
			b.WriteString(fmt.Sprintf(" - Field \"%s\" (type: %s) failed the '%s' validation (rules: %v)\n",
				field, ftype, fe.Tag(), format))
		}
		return b.String()
	}
	return fmt.Sprintf("Validation error: %s", err.Error())
}

func jsonFieldName(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return structField
}

func fieldType(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		return f.Type.Name()
	}
	return ""
}

func getFieldFormat(obj interface{}, structField string) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("binding")
		if tag != "" {
			return strings.Split(tag, ",")
		}
	}
	return nil
}

// ParseUUID 圖片 id 等以 uuid 表示的路徑參數
func ParseUUID(c *gin.Context, key string) (id string, cause error, responseErr error) {
	parsed, err := uuid.Parse(c.Param(key))
	if err != nil {
		return "", err, cErr.ValidatePathParamsErr("invalid " + key)
	}
	return parsed.String(), nil, nil
}

// RequireParam 非空白的路徑參數
func RequireParam(c *gin.Context, key string) (value string, cause error, responseErr error) {
	value = strings.TrimSpace(c.Param(key))
	if value == "" {
		return "", fmt.Errorf("empty path param %s", key), cErr.ValidatePathParamsErr("missing " + key)
	}
	return value, nil, nil
}

// RequireQuery 必填 query 參數
func RequireQuery(c *gin.Context, key string) (value string, cause error, responseErr error) {
	value = strings.TrimSpace(c.Query(key))
	if value == "" {
		return "", fmt.Errorf("empty query %s", key), cErr.BadRequestParams("missing query " + key)
	}
	return value, nil, nil
}

func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return err, cErr.ValidateErr(ValidationErrorResponse(c, req, err))
	}
	return nil, nil
}
func GetInt64Query(c *gin.Context, key string, defaultVal int64) (int64, error) {
	if v := c.Query(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return defaultVal, nil
}

// ===== ImageBackend =====
var validImageBackends = []core.ImageBackend{
	core.ImageBackendDefault,
	core.ImageBackendAlternate,
}

func IsValidImageBackend(backend string) bool {
	for _, v := range validImageBackends {
		if core.ImageBackend(backend) == v {
			return true
		}
	}
	return false
}
