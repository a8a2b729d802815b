package domain

import "errors"

var (
	ErrNotFound        = errors.New("объект не найден")
	ErrConflict        = errors.New("выбранный слот времени недоступен")
	ErrValidation      = errors.New("некорректные данные запроса")
	ErrExternalService = errors.New("ошибка внешнего календаря")
)
