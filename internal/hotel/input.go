package hotel

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the raw, untyped shape of a create or update request as read off the
// wire. A nil pointer means the field was not sent at all.
type Form struct {
	Name          *string
	City          *string
	Country       *string
	Description   *string
	Type          *string
	PricePerNight *string
	StarRating    *string
	AdultCount    *string
	ChildCount    *string
	Facilities    []string
	ImageURLs     []string
}

// FieldError reports one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned when a request fails validation.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "invalid hotel input: " + strings.Join(msgs, "; ")
}

// AsFieldErrors extracts field errors from err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var messages = map[string]string{
	"name":          "Name is required",
	"city":          "City is required",
	"country":       "Country is required",
	"description":   "Description is required",
	"type":          "Hotel type is required",
	"pricePerNight": "Price is required and must be a number",
	"starRating":    "Star rating must be a whole number between 1 and 5",
	"adultCount":    "Adult count must be a non-negative whole number",
	"childCount":    "Child count must be a non-negative whole number",
	"facilities":    "Facilities are required",
	"imageFiles":    "At most 6 images can be uploaded",
}

// Message returns the client-facing message for a field.
func Message(field string) string {
	if m, ok := messages[field]; ok {
		return m
	}
	return field + " is invalid"
}

var validate = newValidator()

// starRatingRule matches the CreateInput tag: 0 is unrated.
const starRatingRule = "omitempty,min=1,max=5"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type collector struct {
	errs FieldErrors
	seen map[string]bool
}

func (c *collector) add(field string) {
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[field] {
		return
	}
	c.seen[field] = true
	c.errs = append(c.errs, FieldError{Field: field, Message: Message(field)})
}

// ParseCreate turns a raw form into a CreateInput. It never touches I/O.
func ParseCreate(f Form) (CreateInput, error) {
	var c collector
	in := CreateInput{
		Name:        trimmed(f.Name),
		City:        trimmed(f.City),
		Country:     trimmed(f.Country),
		Description: trimmed(f.Description),
		Type:        trimmed(f.Type),
		Facilities:  normalizeFacilities(f.Facilities),
	}

	if f.PricePerNight == nil || strings.TrimSpace(*f.PricePerNight) == "" {
		c.add("pricePerNight")
	} else if p, ok := parsePrice(*f.PricePerNight); ok {
		in.PricePerNight = p
	} else {
		c.add("pricePerNight")
	}
	in.StarRating = parseOptionalInt(&c, "starRating", f.StarRating)
	in.AdultCount = parseOptionalInt(&c, "adultCount", f.AdultCount)
	in.ChildCount = parseOptionalInt(&c, "childCount", f.ChildCount)

	if err := in.Validate(); err != nil {
		fe, ok := AsFieldErrors(err)
		if !ok {
			return CreateInput{}, err
		}
		for _, e := range fe {
			c.add(e.Field)
		}
	}
	if len(c.errs) > 0 {
		return CreateInput{}, orderErrors(c.errs)
	}
	return in, nil
}

// Validate checks the struct-level rules of a create request.
func (in CreateInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	var c collector
	for _, e := range ve {
		c.add(baseField(e.Field()))
	}
	return orderErrors(c.errs)
}

// ParsePatch turns a raw form into a Patch. Only fields present in the form are
// checked; each present field must satisfy the same rule as on create.
func ParsePatch(f Form) (Patch, error) {
	var c collector
	p := Patch{RetainedImageURLs: nonBlank(f.ImageURLs)}

	strField := func(field string, raw *string) *string {
		if raw == nil {
			return nil
		}
		v := strings.TrimSpace(*raw)
		if validate.Var(v, "required") != nil {
			c.add(field)
			return nil
		}
		return &v
	}
	p.Name = strField("name", f.Name)
	p.City = strField("city", f.City)
	p.Country = strField("country", f.Country)
	p.Description = strField("description", f.Description)
	p.Type = strField("type", f.Type)

	if f.PricePerNight != nil {
		if v, ok := parsePrice(*f.PricePerNight); ok {
			p.PricePerNight = &v
		} else {
			c.add("pricePerNight")
		}
	}
	intField := func(field, rule string, raw *string) *int {
		if raw == nil {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil || validate.Var(n, rule) != nil {
			c.add(field)
			return nil
		}
		return &n
	}
	p.StarRating = intField("starRating", starRatingRule, f.StarRating)
	p.AdultCount = intField("adultCount", "gte=0", f.AdultCount)
	p.ChildCount = intField("childCount", "gte=0", f.ChildCount)

	if f.Facilities != nil {
		fac := normalizeFacilities(f.Facilities)
		if validate.Var(fac, "required,min=1,dive,required") != nil {
			c.add("facilities")
		} else {
			p.Facilities = fac
		}
	}

	if len(c.errs) > 0 {
		return Patch{}, orderErrors(c.errs)
	}
	return p, nil
}

var fieldOrder = []string{
	"name", "city", "country", "description", "type",
	"pricePerNight", "starRating", "adultCount", "childCount", "facilities", "imageFiles",
}

// orderErrors sorts errors into form order so responses are stable.
func orderErrors(errs FieldErrors) FieldErrors {
	out := make(FieldErrors, 0, len(errs))
	for _, name := range fieldOrder {
		for _, e := range errs {
			if e.Field == name {
				out = append(out, e)
			}
		}
	}
	for _, e := range errs {
		if _, known := messages[e.Field]; !known {
			out = append(out, e)
		}
	}
	return out
}

func baseField(f string) string {
	if i := strings.IndexByte(f, '['); i >= 0 {
		return f[:i]
	}
	return f
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func parseOptionalInt(c *collector, field string, raw *string) int {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		c.add(field)
		return 0
	}
	return n
}

// normalizeFacilities trims entries and collapses duplicates, keeping first-seen
// order. Blank entries are kept so validation can reject them.
func normalizeFacilities(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// nonBlank drops blank entries. A nil input stays nil so an absent field is
// distinguishable from an empty one.
func nonBlank(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
