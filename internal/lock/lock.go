package lock

import (
	"context"
	"errors"
)

var ErrLockNotAcquired = errors.New("замок врача не получен")

// DoctorLocker сериализует бронирования одного врача: проверка доступности
// и вставка записи выполняются внутри критической секции.
type DoctorLocker interface {
	WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error
}

// NoopLocker пропускает вызов без сериализации. Используется, когда Redis
// не настроен; уникальный индекс по слоту остается последней страховкой.
type NoopLocker struct{}

func (NoopLocker) WithDoctorLock(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
