package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/validation"
)

type predictionInput struct {
	Zona  int    `validate:"required,zona"`
	Turno string `validate:"required,turno"`
	Tipo  string `validate:"required,min=2"`
}

func TestValidateStructCustomRules(t *testing.T) {
	tests := []struct {
		name    string
		input   predictionInput
		wantErr bool
	}{
		{
			name:  "valid input",
			input: predictionInput{Zona: 3, Turno: "noche", Tipo: "ROBO"},
		},
		{
			name:    "zone out of range",
			input:   predictionInput{Zona: 9, Turno: "noche", Tipo: "ROBO"},
			wantErr: true,
		},
		{
			name:    "unknown shift",
			input:   predictionInput{Zona: 3, Turno: "madrugada", Tipo: "ROBO"},
			wantErr: true,
		},
		{
			name:  "shift is case insensitive",
			input: predictionInput{Zona: 3, Turno: "Mañana", Tipo: "ROBO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateStruct(&tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.IsType(t, &validation.ValidationError{}, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type roleInput struct {
	Role string `validate:"required,user_role"`
}

func TestValidateStructUserRole(t *testing.T) {
	for _, role := range []string{"Gerente", "JefeOperaciones", "Analista", "EncargadoSipCop"} {
		assert.NoError(t, validation.ValidateStruct(&roleInput{Role: role}), role)
	}
	assert.Error(t, validation.ValidateStruct(&roleInput{Role: "admin"}))
	assert.Error(t, validation.ValidateStruct(&roleInput{Role: ""}))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, validation.ValidateEmail("analista@sipcop.gob.pe"))
	assert.False(t, validation.ValidateEmail("not-an-email"))
	assert.False(t, validation.ValidateEmail(""))
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, validation.ValidateCoordinates(-16.409, -71.535))
	assert.Error(t, validation.ValidateCoordinates(-95.0, -71.535))
	assert.Error(t, validation.ValidateCoordinates(-16.409, 200.0))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, validation.ValidatePasswordStrength("longenough"))
	assert.Error(t, validation.ValidatePasswordStrength("short"))
}
