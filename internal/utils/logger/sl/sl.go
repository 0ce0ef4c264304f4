package sl

import (
	"log/slog"
)

// Err оборачивает ошибку в атрибут slog с ключом "error".
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
