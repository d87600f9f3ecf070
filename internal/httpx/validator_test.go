package httpx

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"notblank"`
	Password string `json:"password" validate:"password_strength"`
	Size     int    `json:"size" validate:"gte=1,lte=30"`
	Color    string `json:"color" validate:"omitempty,color_name"`
}

func init() {
	if err := RegisterValidation("color_name", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "red" || fl.Field().String() == "blue"
	}, "%s must be red or blue"); err != nil {
		panic(err)
	}
}

func TestRegisterValidation_Errors(t *testing.T) {
	err := RegisterValidation("", func(validator.FieldLevel) bool { return true }, "%s")
	assert.Error(t, err)

	err = RegisterValidation("never_true", nil, "%s")
	assert.Error(t, err)
	_, ok := customMessages["never_true"]
	assert.False(t, ok)
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.Nil(t, ValidateStruct(signup{Email: "a@b.co", Name: "x", Password: "Secret#123", Size: 5, Color: "red"}))
	})

	t.Run("every rule reports its json field", func(t *testing.T) {
		details := ValidateStruct(signup{Email: "nope", Name: "   ", Password: "weak", Size: 31, Color: "green"})
		require.Len(t, details, 5)

		byField := map[string]string{}
		for _, d := range details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "email must be a valid email address", byField["email"])
		assert.Equal(t, "name must not be blank", byField["name"])
		assert.Contains(t, byField["password"], "at least 8 characters")
		assert.Equal(t, "size must be less than or equal to 30", byField["size"])
		assert.Equal(t, "color must be red or blue", byField["color"])
	})
}
