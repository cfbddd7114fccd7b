package forms

import (
	"errors"
	"net/url"
	"regexp"
	"time"

	"CastingCall/internal/hashing"
	"CastingCall/internal/models"
)

// MinimumAge: младше не принимаем.
const MinimumAge = 18

// ErrUnderage: заявитель младше MinimumAge. Показывается отдельным
// предупреждением, а не ошибкой поля.
var ErrUnderage = errors.New("you must be at least 18 years old to participate")

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func categoryValues() []string {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out
}

// ContactSchema: форма прослушивания.
var ContactSchema = Schema{
	{Name: "name", Label: "Name", Rules: []Rule{Required(), MaxLength(50)}},
	{Name: "email", Label: "Email", Rules: []Rule{Required(), Email(), MaxLength(100)}},
	{Name: "dob", Label: "Date of Birth", Rules: []Rule{Required(), Date(DateLayout)}},
	{Name: "category", Label: "Audition Category", Rules: []Rule{Required(), OneOf(categoryValues()...)}},
	{Name: "message", Label: "Message", Rules: []Rule{Required(), MaxLength(5000)}},
}

// LoginSchema: вход администратора.
var LoginSchema = Schema{
	{Name: "username", Label: "Username", Rules: []Rule{Required()}},
	{Name: "password", Label: "Password", Rules: []Rule{Required()}, Raw: true},
}

// AdminSchema: добавление администратора.
var AdminSchema = Schema{
	{Name: "name", Label: "Full Name", Rules: []Rule{Required(), MaxLength(100)}},
	{Name: "username", Label: "Username", Rules: []Rule{
		Required(), MaxLength(50),
		Pattern(usernameRe, "Only letters, digits, dots, dashes and underscores are allowed."),
	}},
	{Name: "password", Label: "Password", Rules: []Rule{Required(), MinLength(8), MaxBytes(hashing.MaxPasswordBytes)}, Raw: true},
	{Name: "confirm_password", Label: "Confirm Password", Rules: []Rule{Required(), EqualTo("password", "password")}, Raw: true},
}

// ContactInput: проверенная форма прослушивания.
type ContactInput struct {
	Name        string
	Email       string
	DateOfBirth time.Time
	Category    models.Category
	Message     string
}

// Contact переводит ввод в модель для сохранения.
func (in ContactInput) Contact() *models.Contact {
	return &models.Contact{
		Name:        in.Name,
		Email:       in.Email,
		Message:     in.Message,
		Category:    in.Category,
		DateOfBirth: in.DateOfBirth,
	}
}

// ParseContact проверяет форму и, если она валидна, собирает ContactInput.
// today нужен, чтобы отсечь дату рождения из будущего.
func ParseContact(input url.Values, today time.Time) (ContactInput, Result) {
	res := Validate(input, ContactSchema)
	if !res.Valid() {
		return ContactInput{}, res
	}

	dob, err := time.Parse(DateLayout, res.Get("dob"))
	if err != nil {
		res.add("dob", "Not a valid date value.")
		return ContactInput{}, res
	}
	if dob.After(dateOf(today)) {
		res.add("dob", "Date of birth cannot be in the future.")
		return ContactInput{}, res
	}

	return ContactInput{
		Name:        res.Get("name"),
		Email:       res.Get("email"),
		DateOfBirth: dob,
		Category:    models.Category(res.Get("category")),
		Message:     res.Get("message"),
	}, res
}

type LoginInput struct {
	Username string
	Password string
}

func ParseLogin(input url.Values) (LoginInput, Result) {
	res := Validate(input, LoginSchema)
	if !res.Valid() {
		return LoginInput{}, res
	}
	return LoginInput{Username: res.Get("username"), Password: res.Get("password")}, res
}

type AdminInput struct {
	Name     string
	Username string
	Password string
}

func ParseAdmin(input url.Values) (AdminInput, Result) {
	res := Validate(input, AdminSchema)
	if !res.Valid() {
		return AdminInput{}, res
	}
	return AdminInput{
		Name:     res.Get("name"),
		Username: res.Get("username"),
		Password: res.Get("password"),
	}, res
}

// AgeOn: полных лет на дату today.
func AgeOn(dob, today time.Time) int {
	dob, today = dateOf(dob), dateOf(today)
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// CheckAdult возвращает ErrUnderage, если на today ещё нет MinimumAge.
func CheckAdult(dob, today time.Time) error {
	if AgeOn(dob, today) < MinimumAge {
		return ErrUnderage
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
