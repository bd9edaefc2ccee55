package hotel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func validForm() Form {
	return Form{
		Name:          str("Lotus Inn"),
		City:          str("Kandy"),
		Country:       str("Sri Lanka"),
		Description:   str("Lakeside rooms"),
		Type:          str("Boutique"),
		PricePerNight: str("100"),
		StarRating:    str("4"),
		AdultCount:    str("2"),
		ChildCount:    str("1"),
		Facilities:    []string{"wifi", " parking ", "wifi"},
	}
}

func TestParseCreate_Valid(t *testing.T) {
	in, err := ParseCreate(validForm())
	require.NoError(t, err)
	require.Equal(t, "Lotus Inn", in.Name)
	require.Equal(t, 100.0, in.PricePerNight)
	require.Equal(t, 4, in.StarRating)
	require.Equal(t, []string{"wifi", "parking"}, in.Facilities)
}

func TestParseCreate_MissingRequiredFields(t *testing.T) {
	_, err := ParseCreate(Form{})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)

	fields := make([]string, 0, len(fe))
	for _, e := range fe {
		fields = append(fields, e.Field)
	}
	require.Equal(t, []string{"name", "city", "country", "description", "type", "pricePerNight", "facilities"}, fields)
	require.Equal(t, "Hotel type is required", fe[4].Message)
	require.Equal(t, "Price is required and must be a number", fe[5].Message)
}

func TestParseCreate_EmptyFacilitiesRejected(t *testing.T) {
	f := validForm()
	f.Facilities = []string{}
	_, err := ParseCreate(f)
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Len(t, fe, 1)
	require.Equal(t, "facilities", fe[0].Field)
	require.Equal(t, "Facilities are required", fe[0].Message)
}

func TestParseCreate_BlankFacilityRejected(t *testing.T) {
	f := validForm()
	f.Facilities = []string{"wifi", "  "}
	_, err := ParseCreate(f)
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Equal(t, "facilities", fe[0].Field)
}

func TestParseCreate_BadNumbers(t *testing.T) {
	cases := map[string]func(*Form){
		"pricePerNight": func(f *Form) { f.PricePerNight = str("cheap") },
		"starRating":    func(f *Form) { f.StarRating = str("7") },
		"adultCount":    func(f *Form) { f.AdultCount = str("-1") },
		"childCount":    func(f *Form) { f.ChildCount = str("1.5") },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := validForm()
			mutate(&f)
			_, err := ParseCreate(f)
			fe, ok := AsFieldErrors(err)
			require.True(t, ok, "expected field errors for %s", field)
			require.Len(t, fe, 1)
			require.Equal(t, field, fe[0].Field)
		})
	}
}

func TestParseCreate_NegativePriceRejected(t *testing.T) {
	f := validForm()
	f.PricePerNight = str("-5")
	_, err := ParseCreate(f)
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Equal(t, "pricePerNight", fe[0].Field)
}

func TestParseCreate_OptionalCountsDefaultToZero(t *testing.T) {
	f := validForm()
	f.StarRating, f.AdultCount, f.ChildCount = nil, nil, nil
	in, err := ParseCreate(f)
	require.NoError(t, err)
	require.Zero(t, in.StarRating)
	require.Zero(t, in.AdultCount)
}

func TestParsePatch_OnlyPresentFields(t *testing.T) {
	p, err := ParsePatch(Form{Name: str(" Lotus Inn II "), ImageURLs: []string{"http://img/1", ""}})
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	require.Equal(t, "Lotus Inn II", *p.Name)
	require.Nil(t, p.City)
	require.Nil(t, p.PricePerNight)
	require.Nil(t, p.Facilities)
	require.Equal(t, []string{"http://img/1"}, p.RetainedImageURLs)
}

func TestParsePatch_AbsentImageURLsStayNil(t *testing.T) {
	p, err := ParsePatch(Form{Name: str("Renamed")})
	require.NoError(t, err)
	require.Nil(t, p.RetainedImageURLs)

	p, err = ParsePatch(Form{ImageURLs: []string{}})
	require.NoError(t, err)
	require.NotNil(t, p.RetainedImageURLs)
	require.Empty(t, p.RetainedImageURLs)
}

func TestStarRatingZeroMeansUnratedOnCreateAndPatch(t *testing.T) {
	f := validForm()
	f.StarRating = str("0")
	in, err := ParseCreate(f)
	require.NoError(t, err)
	require.Zero(t, in.StarRating)

	p, err := ParsePatch(Form{StarRating: str("0")})
	require.NoError(t, err)
	require.NotNil(t, p.StarRating)
	require.Zero(t, *p.StarRating)

	for _, bad := range []string{"6", "-1", "x"} {
		_, err := ParseCreate(Form{StarRating: str(bad)})
		fe, _ := AsFieldErrors(err)
		require.Contains(t, fieldsOf(fe), "starRating", bad)

		_, err = ParsePatch(Form{StarRating: str(bad)})
		fe, _ = AsFieldErrors(err)
		require.Equal(t, []string{"starRating"}, fieldsOf(fe), bad)
	}
}

func fieldsOf(fe FieldErrors) []string {
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		out = append(out, e.Field)
	}
	return out
}

func TestParsePatch_InvalidPresentFields(t *testing.T) {
	_, err := ParsePatch(Form{City: str(""), PricePerNight: str("abc"), Facilities: []string{}})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Len(t, fe, 3)
	require.Equal(t, "city", fe[0].Field)
	require.Equal(t, "pricePerNight", fe[1].Field)
	require.Equal(t, "facilities", fe[2].Field)
}

func TestUpdateApplyKeepsOwner(t *testing.T) {
	h := &Hotel{ID: "h1", UserID: "owner-a", Name: "Old", ImageURLs: []string{"x"}}
	name := "New"
	Update{Patch: Patch{Name: &name}, ImageURLs: []string{"y", "x"}}.Apply(h)
	require.Equal(t, "New", h.Name)
	require.Equal(t, "owner-a", h.UserID)
	require.Equal(t, "h1", h.ID)
	require.Equal(t, []string{"y", "x"}, h.ImageURLs)
}
