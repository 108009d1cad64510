package serverutils

import "github.com/gofiber/fiber/v2"

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message}
}

// ErrorHandlerMiddleware is the HTTP last line of defense: it recovers from
// panics below the controllers and converts them into a 500 envelope instead
// of dropping the connection.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				_ = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(500, "internal server error"))
			}
		}()
		return ctx.Next()
	}
}
