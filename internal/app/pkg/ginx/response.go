package ginx

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"mfgcopilot/pkg/logger"
)

// Response 统一响应信封；同步分析接口 /analyze 例外，直接返回扁平结果
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code      int           `json:"code" example:"200"`
	Message   string        `json:"message" example:"OK"`
	RequestID string        `json:"request_id,omitempty" example:"9b2f6a0e-3c1d-4f7a-a0d5-1c2b3d4e5f60"`
	Details   []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 字段级错误，path 为请求体中的 JSON 字段名
type ErrorDetail struct {
	Path string `json:"path" example:"production_volume"`
	Info string `json:"info" example:"production_volume must be greater than 0"`
}

// CodeProcessing Smart Wait 超时，结果仍在计算
const CodeProcessing = 3001

// ProcessingData Smart Wait 超时返回的数据
type ProcessingData struct {
	AnalysisID string `json:"analysis_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PollURL    string `json:"poll_url" example:"/api/v1/analyses/550e8400-e29b-41d4-a716-446655440000"`
}

var registerOnce sync.Once

// UseJSONFieldNames 让校验错误使用 json tag 作为字段名
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

func write(c *gin.Context, httpCode int, meta Meta, data interface{}) {
	meta.RequestID = logger.TraceID(c.Request.Context())
	c.JSON(httpCode, Response{Meta: meta, Data: data})
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Meta{Code: http.StatusOK, Message: "OK"}, data)
}

// Error 错误响应，meta.code 与 HTTP 状态码一致
func Error(c *gin.Context, httpCode int, message string) {
	write(c, httpCode, Meta{Code: httpCode, Message: message}, nil)
}

// Processing 处理中响应（3001），HTTP 状态仍为 200
func Processing(c *gin.Context, analysisID string, pollURL string) {
	write(c, http.StatusOK, Meta{
		Code:    CodeProcessing,
		Message: "Analysis is in progress, please poll for results",
	}, ProcessingData{AnalysisID: analysisID, PollURL: pollURL})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 把绑定错误转换为 400；能定位到字段时带 details
func BadRequestWithValidation(c *gin.Context, err error) {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
	)

	switch {
	case errors.As(err, &validationErrs):
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: validationMessage(fieldErr),
			})
		}
		write(c, http.StatusBadRequest, Meta{Code: http.StatusBadRequest, Message: "Validation failed", Details: details}, nil)
	case errors.As(err, &typeErr):
		write(c, http.StatusBadRequest, Meta{
			Code:    http.StatusBadRequest,
			Message: "Validation failed",
			Details: []ErrorDetail{{Path: typeErr.Field, Info: typeErr.Field + " must be " + typeErr.Type.String()}},
		}, nil)
	case errors.As(err, &syntaxErr):
		BadRequest(c, "request body is not valid JSON")
	default:
		BadRequest(c, err.Error())
	}
}

// Unauthorized 401 错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests 429 错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func validationMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fieldErr.Param()
	case "max":
		return field + " must be at most " + fieldErr.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
