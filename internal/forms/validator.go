package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

// DateLayout: формат поля type="date".
const DateLayout = "2006-01-02"

// Rule проверяет значение поля; values: вся форма (для сравнения полей).
// Пустая строка: ошибки нет.
type Rule func(value string, values map[string]string) string

// Field: описание поля формы.
type Field struct {
	Name  string
	Label string
	Rules []Rule
	// Raw: не обрезать пробелы (пароли)
	Raw bool
}

// Schema: упорядоченный список полей.
type Schema []Field

// Result хранит итог проверки, очищенные значения и ошибки по полям.
type Result struct {
	Values map[string]string
	Errors map[string][]string
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Get: значение поля после очистки.
func (r Result) Get(name string) string {
	return r.Values[name]
}

// FirstError: первая ошибка поля, для вывода под инпутом.
func (r Result) FirstError(name string) string {
	if errs := r.Errors[name]; len(errs) > 0 {
		return errs[0]
	}
	return ""
}

func (r *Result) add(field, msg string) {
	if r.Errors == nil {
		r.Errors = map[string][]string{}
	}
	r.Errors[field] = append(r.Errors[field], msg)
}

// Validate прогоняет все правила всех полей. Ничего не пишет и
// не останавливается на первой ошибке.
func Validate(input url.Values, schema Schema) Result {
	res := Result{Values: make(map[string]string, len(schema))}
	for _, f := range schema {
		v := input.Get(f.Name)
		if !f.Raw {
			v = strings.TrimSpace(v)
		}
		res.Values[f.Name] = v
	}
	for _, f := range schema {
		for _, rule := range f.Rules {
			if msg := rule(res.Values[f.Name], res.Values); msg != "" {
				res.add(f.Name, msg)
			}
		}
	}
	return res
}

// Required: поле не может быть пустым.
func Required() Rule {
	return func(v string, _ map[string]string) string {
		if strings.TrimSpace(v) == "" {
			return "This field is required."
		}
		return ""
	}
}

// Email: синтаксис адреса; пустое значение оставляем Required.
func Email() Rule {
	return func(v string, _ map[string]string) string {
		if v == "" || govalidator.IsEmail(v) {
			return ""
		}
		return "Invalid email address."
	}
}

// Date: дата в формате layout.
func Date(layout string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" || govalidator.IsTime(v, layout) {
			return ""
		}
		return "Not a valid date value."
	}
}

// OneOf: значение из фиксированного списка.
func OneOf(allowed ...string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" || govalidator.IsIn(v, allowed...) {
			return ""
		}
		return "Not a valid choice."
	}
}

func MaxLength(n int) Rule {
	return func(v string, _ map[string]string) string {
		if utf8.RuneCountInString(v) > n {
			return fmt.Sprintf("Field cannot be longer than %d characters.", n)
		}
		return ""
	}
}

func MinLength(n int) Rule {
	return func(v string, _ map[string]string) string {
		if v != "" && utf8.RuneCountInString(v) < n {
			return fmt.Sprintf("Field must be at least %d characters long.", n)
		}
		return ""
	}
}

// MaxBytes: для bcrypt важна длина в байтах, а не в символах.
func MaxBytes(n int) Rule {
	return func(v string, _ map[string]string) string {
		if len(v) > n {
			return fmt.Sprintf("Field cannot be longer than %d bytes.", n)
		}
		return ""
	}
}

// EqualTo: значение должно совпасть с другим полем формы.
func EqualTo(other, label string) Rule {
	return func(v string, values map[string]string) string {
		if v != values[other] {
			return "Field must be equal to " + label + "."
		}
		return ""
	}
}

// Pattern: регулярка с собственным сообщением.
func Pattern(re *regexp.Regexp, msg string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" || re.MatchString(v) {
			return ""
		}
		return msg
	}
}
