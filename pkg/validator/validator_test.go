package validator

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/model/modeltest"
	"github.com/jwalitptl/pdf-api/pkg/errors"
)

func TestValidate_Fixtures(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(modeltest.Prescription()))
	assert.NoError(t, v.Struct(modeltest.Invoice()))
}

func TestFieldErrors(t *testing.T) {
	v := New()
	zero := decimal.Zero

	tests := []struct {
		name   string
		mutate func() interface{}
		want   errors.FieldError
	}{
		{
			name: "empty medications",
			mutate: func() interface{} {
				req := modeltest.Prescription()
				req.Medications = []model.Medication{}
				return req
			},
			want: errors.FieldError{Field: "medications", Message: "must have at least 1 characters or items"},
		},
		{
			name: "bad gender",
			mutate: func() interface{} {
				req := modeltest.Prescription()
				req.Patient.Gender = "X"
				return req
			},
			want: errors.FieldError{Field: "patient.gender", Message: "value must be one of: M F Other"},
		},
		{
			name: "bad doctor phone",
			mutate: func() interface{} {
				req := modeltest.Prescription()
				req.Doctor.Phone = "call me"
				return req
			},
			want: errors.FieldError{Field: "doctor.phone", Message: "value is not a valid phone number"},
		},
		{
			name: "zero quantity",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				req.Items[0].Quantity = &zero
				return req
			},
			want: errors.FieldError{Field: "items[0].quantity", Message: "must be greater than 0"},
		},
		{
			name: "missing unit price",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				req.Items[0].UnitPrice = nil
				return req
			},
			want: errors.FieldError{Field: "items[0].unit_price", Message: "field required"},
		},
		{
			name: "discount over 100",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				req.Items[0].DiscountPercent = decimal.RequireFromString("100.5")
				return req
			},
			want: errors.FieldError{Field: "items[0].discount_percent", Message: "must be less than or equal to 100"},
		},
		{
			name: "quantity over cap",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				big := decimal.RequireFromString("1e7")
				req.Items[0].Quantity = &big
				return req
			},
			want: errors.FieldError{Field: "items[0].quantity", Message: "must be less than or equal to 1000000"},
		},
		{
			name: "tax with huge negative exponent",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				req.Items[0].TaxPercent = decimal.New(1, -40)
				return req
			},
			want: errors.FieldError{Field: "items[0].tax_percent", Message: "number is out of the supported range"},
		},
		{
			name: "bad due date",
			mutate: func() interface{} {
				req := modeltest.Invoice()
				req.Payment.DueDate = "14/04/2024"
				return req
			},
			want: errors.FieldError{Field: "payment.due_date", Message: "must be a date in the format 2006-01-02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.mutate())
			require.Error(t, err)
			assert.Equal(t, []errors.FieldError{tt.want}, FieldErrors(err))
		})
	}
}

func TestValidate_HugeExponent(t *testing.T) {
	v := New()

	for _, field := range []string{"quantity", "unit_price", "discount_percent"} {
		t.Run(field, func(t *testing.T) {
			req := modeltest.Invoice()
			raw, err := json.Marshal(req)
			require.NoError(t, err)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			body["items"].([]interface{})[0].(map[string]interface{})[field] = json.RawMessage("1e2000000000")
			raw, err = json.Marshal(body)
			require.NoError(t, err)

			var decoded model.InvoiceRequest
			require.NoError(t, json.Unmarshal(raw, &decoded))

			err = v.Struct(&decoded)
			require.Error(t, err)
			assert.Equal(t, []errors.FieldError{{
				Field:   "items[0]." + field,
				Message: "number is out of the supported range",
			}}, FieldErrors(err))
		})
	}
}

func TestFieldErrors_DecodeErrors(t *testing.T) {
	var req model.InvoiceRequest

	err := json.Unmarshal([]byte(`{"invoice_number": 7}`), &req)
	require.Error(t, err)
	assert.Equal(t, "invoice_number", FieldErrors(err)[0].Field)

	err = json.Unmarshal([]byte(`{`), &req)
	require.Error(t, err)
	assert.Equal(t, "body", FieldErrors(err)[0].Field)

	assert.Nil(t, FieldErrors(nil))
}

func TestRegisterGin(t *testing.T) {
	require.NoError(t, RegisterGin())
	require.NoError(t, RegisterGin())
}
