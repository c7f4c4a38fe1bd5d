package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/week"
)

func str(s string) *string { return &s }

func fieldErrors(t *testing.T, err error) apperrors.FieldErrors {
	t.Helper()
	require.Error(t, err)
	ae := apperrors.From(err)
	require.Equal(t, apperrors.CodeInvalid, ae.Code)
	return ae.Fields
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+91 90000-00001": "9000000001",
		"9876543210":      "9876543210",
		"(987) 654-3210":  "9876543210",
		"09876543210":     "9876543210",
		"12345":           "12345",
		"abc":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestParseDriverCreate(t *testing.T) {
	d, err := ParseDriverCreate(DriverRequest{
		Name:          str("  Aarav Kumar "),
		Phone:         str("+91 90000-00001"),
		LicenseNumber: str("dl-123"),
		JoinDate:      str("2025-10-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aarav Kumar", d.Name)
	assert.Equal(t, "9000000001", d.Phone)
	require.NotNil(t, d.LicenseNumber)
	assert.Equal(t, "DL-123", *d.LicenseNumber)
	require.NotNil(t, d.JoinDate)
	assert.Equal(t, "2025-10-01", week.ISO(*d.JoinDate))
	assert.Nil(t, d.ProfileImageURL)
}

func TestParseDriverCreateLicence(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := ParseDriverCreate(DriverRequest{Name: str("Aarav"), Phone: str("9876543210"), LicenseNumber: str("ab")})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "licenseNumber")
	})
	t.Run("blank is absent", func(t *testing.T) {
		d, err := ParseDriverCreate(DriverRequest{Name: str("Aarav"), Phone: str("9876543210"), LicenseNumber: str("")})
		require.NoError(t, err)
		assert.Nil(t, d.LicenseNumber)
	})
	t.Run("british spelling alias", func(t *testing.T) {
		d, err := ParseDriverCreate(DriverRequest{Name: str("Aarav"), Phone: str("9876543210"), LicenceNumber: str(" ka-01 ")})
		require.NoError(t, err)
		require.NotNil(t, d.LicenseNumber)
		assert.Equal(t, "KA-01", *d.LicenseNumber)
	})
}

func TestParseDriverCreateFieldErrors(t *testing.T) {
	_, err := ParseDriverCreate(DriverRequest{
		Name:            str("A"),
		Phone:           str("12345"),
		JoinDate:        str("2025-02-30"),
		ProfileImageURL: str("not a url"),
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, []string{"Enter full name"}, fields["name"])
	assert.Equal(t, []string{"Enter a valid phone (10+ digits)"}, fields["phone"])
	assert.Equal(t, []string{"Select a valid date"}, fields["joinDate"])
	assert.Equal(t, []string{"Enter a valid URL"}, fields["profileImageUrl"])
}

func TestParseDriverCreatePhoneMessages(t *testing.T) {
	_, err := ParseDriverCreate(DriverRequest{Name: str("Aarav")})
	assert.Equal(t, []string{"Phone is required"}, fieldErrors(t, err)["phone"])

	_, err = ParseDriverCreate(DriverRequest{Name: str("Aarav"), Phone: str("call me")})
	assert.Equal(t, []string{"Enter a valid phone (10+ digits)"}, fieldErrors(t, err)["phone"])

	d, err := ParseDriverCreate(DriverRequest{Name: str("Aarav"), Phone: str("+44 7700 900123 4567")})
	require.NoError(t, err)
	assert.Equal(t, "4477009001234567", d.Phone)
}

func TestParseDriverPatch(t *testing.T) {
	hidden := true
	patch, err := ParseDriverPatch(DriverRequest{LicenseNumber: str(""), Hidden: &hidden, Phone: str("98765 43210")})
	require.NoError(t, err)
	assert.True(t, patch.ClearLicense)
	require.NotNil(t, patch.Phone)
	assert.Equal(t, "9876543210", *patch.Phone)
	assert.Equal(t, &hidden, patch.Hidden)

	_, err = ParseDriverPatch(DriverRequest{})
	assert.Contains(t, fieldErrors(t, err), "_")

	_, err = ParseDriverPatch(DriverRequest{Name: str(" ")})
	assert.Contains(t, fieldErrors(t, err), "name")
}

func TestParseWeeklyCreate(t *testing.T) {
	in, err := ParseWeeklyCreate(WeeklyRequest{
		DriverID:  "d1",
		WeekStart: str("2025-10-29"),
		Earnings:  "1850.456",
		Trips:     float64(64),
		Notes:     str("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-10-27", in.Week.StartISO())
	assert.Equal(t, "2025-11-02", in.Week.EndISO())
	assert.True(t, decimal.RequireFromString("1850.46").Equal(in.Earnings))
	assert.Equal(t, 64, in.Trips)
	assert.Nil(t, in.Notes)

	entry := in.Entry()
	assert.Equal(t, in.Week.End, entry.WeekEnd)
}

func TestParseWeeklyCreateCoercion(t *testing.T) {
	tests := []struct {
		name     string
		earnings any
		trips    any
		field    string
		msg      string
	}{
		{"missing earnings", nil, float64(1), "earnings", "Enter a valid amount"},
		{"text earnings", "lots", float64(1), "earnings", "Enter a valid amount"},
		{"negative earnings", float64(-1), float64(1), "earnings", "Earnings cannot be negative"},
		{"fractional trips", float64(10), 2.5, "trips", "Enter a whole number"},
		{"text trips", float64(10), "x", "trips", "Enter a whole number"},
		{"negative trips", float64(10), "-3", "trips", "Trips cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWeeklyCreate(WeeklyRequest{
				DriverID:  "d1",
				WeekStart: str("2025-10-27"),
				Earnings:  tt.earnings,
				Trips:     tt.trips,
			})
			assert.Equal(t, []string{tt.msg}, fieldErrors(t, err)[tt.field])
		})
	}
}

func TestParseWeeklyCreateRequiresDriverAndWeek(t *testing.T) {
	_, err := ParseWeeklyCreate(WeeklyRequest{Earnings: float64(1), Trips: float64(1)})
	fields := fieldErrors(t, err)
	assert.Equal(t, []string{"Driver is required"}, fields["driverId"])
	assert.Equal(t, []string{"Use YYYY-MM-DD"}, fields["weekStart"])
}

func TestParseWeeklyPatch(t *testing.T) {
	patch, err := ParseWeeklyPatch(WeeklyRequest{WeekStart: str("2025-11-02"), Trips: "12", Notes: str("")})
	require.NoError(t, err)
	require.NotNil(t, patch.WeekStart)
	assert.Equal(t, "2025-10-27", week.ISO(*patch.WeekStart))
	require.NotNil(t, patch.Trips)
	assert.Equal(t, 12, *patch.Trips)
	assert.True(t, patch.ClearNotes)
	assert.Nil(t, patch.Earnings)

	_, err = ParseWeeklyPatch(WeeklyRequest{Earnings: float64(-5)})
	assert.Equal(t, []string{"Earnings cannot be negative"}, fieldErrors(t, err)["earnings"])

	_, err = ParseWeeklyPatch(WeeklyRequest{})
	assert.Contains(t, fieldErrors(t, err), "_")
}
