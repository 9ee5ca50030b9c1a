package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout - формат дат во входных данных: dd.mm.yyyy.
const DateLayout = "2.1.2006"

// MaxAgeDays - максимальный возраст для даты рождения.
const MaxAgeDays = 70 * 365

// Гендеры.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

var phoneRe = regexp.MustCompile(`^7\d{10}$`)

// CharField - строка.
func CharField(p Policy) *Field {
	return NewField(p, []any{""}, validateChar)
}

// ArgumentsField - объект с аргументами метода. Пустое значение - пустой объект.
func ArgumentsField(p Policy) *Field {
	return NewField(p, []any{map[string]any{}}, func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("arguments must be an object: %w", ErrInvalid)
		}
		return m, nil
	})
}

// EmailField - строка, содержащая '@'.
func EmailField(p Policy) *Field {
	return NewField(p, []any{""}, func(v any) (any, error) {
		s, err := validateChar(v)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(s.(string), "@") {
			return nil, fmt.Errorf("email without @: %w", ErrInvalid)
		}
		return s, nil
	})
}

// PhoneField - строка или целое число вида 7XXXXXXXXXX.
// Пустые значения - пустая строка и 0. Очищенное значение всегда строка.
func PhoneField(p Policy) *Field {
	return NewField(p, []any{"", 0}, func(v any) (any, error) {
		var s string
		switch x := v.(type) {
		case string:
			s = x
		default:
			n, ok := asInt(v)
			if !ok {
				return nil, fmt.Errorf("phone must be a string or an integer: %w", ErrInvalid)
			}
			s = strconv.FormatInt(n, 10)
		}
		if !phoneRe.MatchString(s) {
			return nil, fmt.Errorf("phone %q: %w", s, ErrInvalid)
		}
		return s, nil
	})
}

// DateField - дата в формате dd.mm.yyyy. Очищенное значение - time.Time.
func DateField(p Policy) *Field {
	return NewField(p, []any{""}, validateDate)
}

// BirthDayField - дата не из будущего и не старше MaxAgeDays дней.
// clock задаёт "сейчас"; nil означает time.Now.
func BirthDayField(p Policy, clock func() time.Time) *Field {
	if clock == nil {
		clock = time.Now
	}
	return NewField(p, []any{""}, func(v any) (any, error) {
		d, err := validateDate(v)
		if err != nil {
			return nil, err
		}
		days := calendarDays(d.(time.Time), clock())
		if days < 0 || days > MaxAgeDays {
			return nil, fmt.Errorf("birthday out of range (%d days): %w", days, ErrInvalid)
		}
		return d, nil
	})
}

// calendarDays - число календарных дней от from до to без учёта
// часового пояса и перехода на летнее время.
func calendarDays(from, to time.Time) int {
	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int(day(to).Sub(day(from)).Hours() / 24)
}

// GenderField - целое из {0, 1, 2}. Пустых значений нет: 0 - обычный гендер.
func GenderField(p Policy) *Field {
	return NewField(p, []any{}, func(v any) (any, error) {
		n, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("gender must be an integer: %w", ErrInvalid)
		}
		switch n {
		case GenderUnknown, GenderMale, GenderFemale:
			return int(n), nil
		}
		return nil, fmt.Errorf("unknown gender %d: %w", n, ErrInvalid)
	})
}

// ClientIDsField - список неотрицательных целых. Пустое значение - пустой список.
func ClientIDsField(p Policy) *Field {
	return NewField(p, []any{[]any{}}, func(v any) (any, error) {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("client ids must be a list: %w", ErrInvalid)
		}
		ids := make([]int, 0, len(list))
		for _, item := range list {
			n, ok := asInt(item)
			if !ok || n < 0 {
				return nil, fmt.Errorf("client id %v: %w", item, ErrInvalid)
			}
			ids = append(ids, int(n))
		}
		return ids, nil
	})
}

func validateChar(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%T is not a string: %w", v, ErrInvalid)
	}
	return s, nil
}

func validateDate(v any) (any, error) {
	s, err := validateChar(v)
	if err != nil {
		return nil, err
	}
	d, err := time.ParseInLocation(DateLayout, s.(string), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	return d, nil
}
