// Package schema реализует декларативную валидацию входных данных:
// типизированные поля с политикой обязательности и допустимости "пустых" значений,
// а также схемы - упорядоченные наборы полей с межполевыми правилами.
//
// Поля и схемы создаются один раз при старте и после этого не изменяются,
// поэтому их можно безопасно разделять между конкурентными запросами.
// Всё состояние конкретного запроса живёт в Result.
package schema

import (
	"encoding/json"
	"errors"
	"reflect"
)

// ErrInvalid возвращается проверкой типа, если значение не прошло валидацию.
// Наружу из пакета не выходит: Field превращает её в признак ok=false.
var ErrInvalid = errors.New("invalid value")

// ValidateFunc проверяет "сырое" значение и возвращает нормализованное.
type ValidateFunc func(value any) (any, error)

// Policy задаёт обязательность поля и допустимость пустых значений.
type Policy struct {
	// Required - поле обязано присутствовать во входных данных.
	Required bool
	// Nullable - поле может содержать одно из своих пустых значений.
	Nullable bool
}

// Field - правило валидации одного значения.
type Field struct {
	Policy

	// NullValues - значения, которые считаются "присутствующим, но пустым".
	NullValues []any

	validate ValidateFunc
}

// NewField создаёт поле с произвольной проверкой типа.
func NewField(p Policy, nullValues []any, validate ValidateFunc) *Field {
	if validate == nil {
		validate = func(v any) (any, error) { return v, nil }
	}
	return &Field{
		Policy:     p,
		NullValues: nullValues,
		validate:   validate,
	}
}

// Valid проверяет значение и возвращает его очищенную форму.
//
// Отсутствующее значение (nil) допустимо, только если поле не обязательное.
// Пустое значение допустимо, только если поле nullable, и возвращается как есть.
// Остальные значения проходят проверку типа.
func (f *Field) Valid(raw any) (any, bool) {
	if raw == nil {
		return nil, !f.Required
	}
	if f.IsNull(raw) {
		return raw, f.Nullable
	}

	clean, err := f.validate(raw)
	if err != nil {
		return nil, false
	}
	return clean, true
}

// IsNull сообщает, совпадает ли значение с одним из пустых значений поля.
func (f *Field) IsNull(raw any) bool {
	for _, nv := range f.NullValues {
		if sameValue(raw, nv) {
			return true
		}
	}
	return false
}

// sameValue сравнивает значения так, как они приходят из JSON:
// числа сравниваются по величине независимо от представления.
func sameValue(a, b any) bool {
	x, aNum := number(a)
	y, bNum := number(b)
	if aNum || bNum {
		return aNum && bNum && x == y
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// asInt принимает только целые числа. Дробные значения (в том числе 1.0)
// и строки целыми не считаются.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
