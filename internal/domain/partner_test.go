package domain

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPartnerCode(t *testing.T) {
	code := FormatPartnerCode(PartnerTypeLocation, 2026, 42)
	assert.Equal(t, "LP-2026-0042", code)
	assert.Regexp(t, regexp.MustCompile(`^LP-\d{4}-\d{4}$`), code)

	assert.Equal(t, "RP-2026-0007", FormatPartnerCode(PartnerTypeReferral, 2026, 7))
	// sequences past 9999 widen rather than wrap
	assert.Equal(t, "LP-2026-12345", FormatPartnerCode(PartnerTypeLocation, 2026, 12345))
}

func TestCreatePartnerRequestValidate(t *testing.T) {
	t.Run("defaults to location partner", func(t *testing.T) {
		req := &CreatePartnerRequest{ContactName: "Jane Doe", Email: "jane@x.com", CompanyName: "Acme"}
		require.NoError(t, req.Validate())
		assert.Equal(t, PartnerTypeLocation, req.Type)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		req := &CreatePartnerRequest{ContactName: "Jane", Email: "not-an-email", CompanyName: "Acme"}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		req := &CreatePartnerRequest{ContactName: "Jane", Email: "jane@x.com", CompanyName: "Acme", Type: "franchise"}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects missing company", func(t *testing.T) {
		req := &CreatePartnerRequest{ContactName: "Jane", Email: "jane@x.com"}
		assert.Error(t, req.Validate())
	})
}

func TestPartnerListParamsFromQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		params := PartnerListParams{}
		require.NoError(t, params.FromQuery(url.Values{}))
		assert.Equal(t, 20, params.Limit)
	})

	t.Run("caps the limit", func(t *testing.T) {
		params := PartnerListParams{}
		require.NoError(t, params.FromQuery(url.Values{"limit": {"500"}}))
		assert.Equal(t, 100, params.Limit)
	})

	t.Run("parses filters", func(t *testing.T) {
		params := PartnerListParams{}
		q := url.Values{"stage": {"trial"}, "type": {"location_partner"}, "active": {"true"}}
		require.NoError(t, params.FromQuery(q))
		assert.Equal(t, StageTrial, params.Stage)
		require.NotNil(t, params.Active)
		assert.True(t, *params.Active)
	})

	t.Run("rejects unknown stage", func(t *testing.T) {
		params := PartnerListParams{}
		assert.Error(t, params.FromQuery(url.Values{"stage": {"bogus"}}))
	})
}
