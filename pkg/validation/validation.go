package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

const (
	MinThemeLength = 1
	MaxThemeLength = 120
)

// prohibitedWords はテーマに含めてはいけないブランド名・権利表記です。大文字小文字は区別しません。
var prohibitedWords = []string{
	"copyright",
	"trademark",
	"disney",
	"pokemon",
	"mario",
	"nintendo",
	"sony",
	"microsoft",
	"apple",
	"coca-cola",
	"mcdonald",
	"starbucks",
}

// Form は利用者から受け取った未検証の入力です。
type Form struct {
	Theme string `validate:"required,min=1,max=120,nobrand"`
	Vibe  string `validate:"required,vibe"`
	Pose  string `validate:"required,pose"`
}

// FieldError は 1 項目分の検証エラーです。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors は検証エラーの一覧です。
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "入力内容に誤りがあります: " + strings.Join(msgs, ", ")
}

// Validator はフォーム入力を検証して domain.Selection に変換します。
type Validator struct {
	v *validator.Validate
}

// New はカスタムルールを登録した Validator を返します。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nobrand", func(fl validator.FieldLevel) bool {
		return ContainsProhibited(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("vibe", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseVibe(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("pose", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParsePose(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Validate はテーマの前後の空白を取り除いてから検証します。
// 失敗した場合は Errors を返します。
func (v *Validator) Validate(form Form) (*domain.Selection, error) {
	form.Theme = strings.TrimSpace(form.Theme)
	form.Vibe = strings.TrimSpace(form.Vibe)
	form.Pose = strings.TrimSpace(form.Pose)

	if err := v.v.Struct(form); err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return nil, err
		}
		out := make(Errors, 0, len(vErrs))
		for _, fe := range vErrs {
			out = append(out, FieldError{Field: fieldName(fe.Field()), Message: message(fe)})
		}
		return nil, out
	}

	vibe, _ := domain.ParseVibe(form.Vibe)
	pose, _ := domain.ParsePose(form.Pose)
	return &domain.Selection{Theme: form.Theme, Vibe: vibe, Pose: pose}, nil
}

// ContainsProhibited はテーマに含まれる禁止語を返します。含まれなければ空文字です。
func ContainsProhibited(text string) string {
	lower := strings.ToLower(text)
	for _, w := range prohibitedWords {
		if strings.Contains(lower, w) {
			return w
		}
	}
	return ""
}

func fieldName(structField string) string {
	switch structField {
	case "Theme":
		return "houseTheme"
	case "Vibe":
		return "vibe"
	case "Pose":
		return "pose"
	}
	return strings.ToLower(structField)
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Theme":
		switch fe.Tag() {
		case "required", "min":
			return "テーマを入力してください"
		case "max":
			return fmt.Sprintf("テーマは%d文字以内で入力してください", MaxThemeLength)
		case "nobrand":
			return "ブランド名や著作物の名前はテーマに使えません"
		}
	case "Vibe":
		return "ふんいきは「元気」「上品」「クール」から選んでください"
	case "Pose":
		return "ポーズは「手を振る」「ピース」「腰に手」から選んでください"
	}
	return "入力内容が正しくありません"
}
