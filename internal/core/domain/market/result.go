// internal/core/domain/market/result.go
package market

// Result - типизированный результат вызова источника данных:
// либо метрики, либо причина отказа. Value всегда пригодно к использованию,
// при отказе это нулевое значение (все поля отсутствуют).
type Result[T any] struct {
	Source string
	Value  T
	Err    error
}

// Success создает успешный результат
func Success[T any](source string, value T) Result[T] {
	return Result[T]{Source: source, Value: value}
}

// Failure создает результат-отказ с пустыми метриками
func Failure[T any](source string, err error) Result[T] {
	var zero T
	return Result[T]{Source: source, Value: zero, Err: err}
}

// OK true, если источник ответил
func (r Result[T]) OK() bool {
	return r.Err == nil
}
