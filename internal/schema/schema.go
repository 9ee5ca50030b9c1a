package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sol1corejz/scoring-api/internal/logger"
	"go.uber.org/zap"
)

// NamedField связывает имя ключа во входных данных с правилом валидации.
type NamedField struct {
	Name  string
	Field *Field
}

// Named - короткая запись для NamedField.
func Named(name string, f *Field) NamedField {
	return NamedField{Name: name, Field: f}
}

// Rule - межполевое правило. Выполняется только после успешной проверки всех полей.
// Возвращает текст ошибки или пустую строку.
type Rule func(s *Schema, r *Result) string

// Schema - упорядоченный набор полей одной формы запроса.
type Schema struct {
	name   string
	fields []NamedField
	index  map[string]*Field
	rules  []Rule
}

// New создаёт схему. Порядок полей определяет порядок проверки и ошибок.
func New(name string, fields ...NamedField) *Schema {
	s := &Schema{
		name:   name,
		fields: fields,
		index:  make(map[string]*Field, len(fields)),
	}
	for _, nf := range fields {
		s.index[nf.Name] = nf.Field
	}
	return s
}

// WithRules добавляет межполевые правила. Вызывается только при построении схемы.
func (s *Schema) WithRules(rules ...Rule) *Schema {
	s.rules = append(s.rules, rules...)
	return s
}

// Name возвращает имя схемы.
func (s *Schema) Name() string {
	return s.name
}

// Fields возвращает поля в порядке объявления.
func (s *Schema) Fields() []NamedField {
	return s.fields
}

// Field возвращает поле по имени или nil.
func (s *Schema) Field(name string) *Field {
	return s.index[name]
}

// Validate проверяет входной объект. Отсутствующий ключ и JSON null
// обрабатываются одинаково - как отсутствующее значение.
func (s *Schema) Validate(raw map[string]any) *Result {
	if raw == nil {
		raw = map[string]any{}
	}
	res := &Result{
		Raw:   raw,
		Clean: make(map[string]any, len(s.fields)),
	}

	for _, nf := range s.fields {
		value := raw[nf.Name]
		clean, ok := nf.Field.Valid(value)
		if !ok {
			msg := fmt.Sprintf("%s:%s invalid", nf.Name, formatValue(value))
			res.Errors = append(res.Errors, msg)
			logger.Log.Info("field validation failed",
				zap.String("schema", s.name),
				zap.String("field", nf.Name),
				zap.String("value", formatValue(value)),
			)
			continue
		}
		if clean != nil {
			res.Clean[nf.Name] = clean
		}
	}
	if len(res.Errors) > 0 {
		return res
	}

	for _, rule := range s.rules {
		if msg := rule(s, res); msg != "" {
			res.Errors = append(res.Errors, msg)
		}
	}
	return res
}

// Result - результат проверки одного запроса. Принадлежит вызывающему.
type Result struct {
	// Raw - исходный объект.
	Raw map[string]any
	// Clean - очищенные значения присутствующих полей.
	Clean map[string]any
	// Errors - сообщения об ошибках в порядке обнаружения.
	Errors []string
}

// Valid сообщает, прошла ли проверка.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Present сообщает, что значение поля есть во входных данных и не равно null.
func (r *Result) Present(name string) bool {
	return r.Raw[name] != nil
}

// String возвращает строковое значение поля или "".
func (r *Result) String(name string) string {
	s, _ := r.Clean[name].(string)
	return s
}

// Int возвращает целое значение поля.
func (r *Result) Int(name string) (int, bool) {
	n, ok := r.Clean[name].(int)
	return n, ok
}

// Ints возвращает список целых.
func (r *Result) Ints(name string) []int {
	ids, _ := r.Clean[name].([]int)
	return ids
}

// Time возвращает значение поля-даты.
func (r *Result) Time(name string) (time.Time, bool) {
	t, ok := r.Clean[name].(time.Time)
	return t, ok
}

// Map возвращает значение поля-объекта.
func (r *Result) Map(name string) map[string]any {
	m, _ := r.Clean[name].(map[string]any)
	return m
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
