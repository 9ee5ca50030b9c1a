// Package models описывает формы запросов API и их типизированные представления.
package models

import (
	"time"

	"github.com/sol1corejz/scoring-api/internal/schema"
)

// Методы API.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// AdminLogin - логин администратора.
const AdminLogin = "admin"

// Поля online_score.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldBirthday  = "birthday"
	FieldGender    = "gender"
)

// PairFields - пары полей online_score, из которых хотя бы одна должна быть заполнена целиком.
var PairFields = [][2]string{
	{FieldPhone, FieldEmail},
	{FieldFirstName, FieldLastName},
	{FieldGender, FieldBirthday},
}

// ErrNoPair - сообщение об ошибке, если ни одна пара не заполнена.
const ErrNoPair = "no complete field pair: phone/email, first_name/last_name or gender/birthday"

var (
	optional = schema.Policy{Required: false, Nullable: true}

	methodRequestSchema = schema.New("method_request",
		schema.Named("account", schema.CharField(optional)),
		schema.Named("login", schema.CharField(schema.Policy{Required: true, Nullable: true})),
		schema.Named("token", schema.CharField(schema.Policy{Required: true, Nullable: true})),
		schema.Named("arguments", schema.ArgumentsField(schema.Policy{Required: true, Nullable: true})),
		schema.Named("method", schema.CharField(schema.Policy{Required: true, Nullable: false})),
	)

	onlineScoreSchema = NewOnlineScoreSchema(time.Now)

	clientsInterestsSchema = schema.New("clients_interests",
		schema.Named("client_ids", schema.ClientIDsField(schema.Policy{Required: true, Nullable: false})),
		schema.Named("date", schema.DateField(optional)),
	)
)

// MethodRequest - внешний конверт запроса.
type MethodRequest struct {
	Account   string
	Login     string
	Token     string
	Method    string
	Arguments map[string]any
}

// IsAdmin сообщает, что запрос сделан администратором.
func (r *MethodRequest) IsAdmin() bool {
	return r.Login == AdminLogin
}

// ParseMethodRequest проверяет конверт запроса.
func ParseMethodRequest(raw map[string]any) (*MethodRequest, []string) {
	res := methodRequestSchema.Validate(raw)
	if !res.Valid() {
		return nil, res.Errors
	}
	args := res.Map("arguments")
	if args == nil {
		args = map[string]any{}
	}
	return &MethodRequest{
		Account:   res.String("account"),
		Login:     res.String("login"),
		Token:     res.String("token"),
		Method:    res.String("method"),
		Arguments: args,
	}, nil
}

// OnlineScoreRequest - аргументы online_score.
type OnlineScoreRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  *time.Time
	Gender    *int

	// Has - имена переданных непустых аргументов в порядке объявления.
	Has []string
}

// NewOnlineScoreSchema строит схему online_score. clock задаёт "сейчас" для даты рождения.
func NewOnlineScoreSchema(clock func() time.Time) *schema.Schema {
	return schema.New("online_score",
		schema.Named(FieldFirstName, schema.CharField(optional)),
		schema.Named(FieldLastName, schema.CharField(optional)),
		schema.Named(FieldEmail, schema.EmailField(optional)),
		schema.Named(FieldPhone, schema.PhoneField(optional)),
		schema.Named(FieldBirthday, schema.BirthDayField(optional, clock)),
		schema.Named(FieldGender, schema.GenderField(optional)),
	).WithRules(checkPairs)
}

// checkPairs требует, чтобы хотя бы одна пара была передана и не пуста.
func checkPairs(s *schema.Schema, r *schema.Result) string {
	for _, pair := range PairFields {
		if filled(s, r, pair[0]) && filled(s, r, pair[1]) {
			return ""
		}
	}
	return ErrNoPair
}

func filled(s *schema.Schema, r *schema.Result, name string) bool {
	return r.Present(name) && !s.Field(name).IsNull(r.Raw[name])
}

// ParseOnlineScoreRequest проверяет аргументы online_score.
func ParseOnlineScoreRequest(raw map[string]any) (*OnlineScoreRequest, []string) {
	return parseOnlineScore(onlineScoreSchema, raw)
}

func parseOnlineScore(s *schema.Schema, raw map[string]any) (*OnlineScoreRequest, []string) {
	res := s.Validate(raw)
	if !res.Valid() {
		return nil, res.Errors
	}

	req := &OnlineScoreRequest{
		FirstName: res.String(FieldFirstName),
		LastName:  res.String(FieldLastName),
		Email:     res.String(FieldEmail),
		Phone:     res.String(FieldPhone),
		Has:       []string{},
	}
	if d, ok := res.Time(FieldBirthday); ok {
		req.Birthday = &d
	}
	if g, ok := res.Int(FieldGender); ok {
		req.Gender = &g
	}
	for _, nf := range s.Fields() {
		if filled(s, res, nf.Name) {
			req.Has = append(req.Has, nf.Name)
		}
	}
	return req, nil
}

// ClientsInterestsRequest - аргументы clients_interests.
type ClientsInterestsRequest struct {
	ClientIDs []int
	Date      *time.Time
}

// ParseClientsInterestsRequest проверяет аргументы clients_interests.
func ParseClientsInterestsRequest(raw map[string]any) (*ClientsInterestsRequest, []string) {
	res := clientsInterestsSchema.Validate(raw)
	if !res.Valid() {
		return nil, res.Errors
	}
	req := &ClientsInterestsRequest{ClientIDs: res.Ints("client_ids")}
	if d, ok := res.Time("date"); ok {
		req.Date = &d
	}
	return req, nil
}
