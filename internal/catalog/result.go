package catalog

// Source tells where the data in a Result came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

const NotFoundMessage = "Not found"

type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Source  Source `json:"source,omitempty"`
}

func success[T any](v T, src Source) Result[T] {
	return Result[T]{Success: true, Data: v, Source: src}
}

func notFound[T any]() Result[T] {
	return Result[T]{Success: false, Message: NotFoundMessage}
}

// Degraded reports whether the data is demonstration data rather than the live catalog.
func (r Result[T]) Degraded() bool {
	return r.Source == SourceFallback
}
