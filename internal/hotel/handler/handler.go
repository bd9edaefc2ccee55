package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/service"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/media"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
)

// DefaultMaxFileBytes is the per-image upload limit.
const DefaultMaxFileBytes int64 = 5 << 20

const (
	fileField       = "imageFiles"
	multipartMemory = 32 << 20
	// formOverhead is the body allowance for text fields and part headers.
	formOverhead = 1 << 20
)

type hotelHandler struct {
	svc     *service.Service
	maxFile int64
	maxBody int64
}

// limits bounds what readForm accepts. maxFiles <= 0 means no count limit.
type limits struct {
	maxFile  int64
	maxFiles int
	maxBody  int64
}

// RegisterHotelRoutes mounts the owner CRUD routes on rg (normally
// /api/my-hotels behind AuthMiddleware). maxFileBytes <= 0 selects the default.
func RegisterHotelRoutes(rg *gin.RouterGroup, svc *service.Service, maxFileBytes int64) {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	h := &hotelHandler{
		svc:     svc,
		maxFile: maxFileBytes,
		maxBody: maxFileBytes*hotel.MaxCreateImages + formOverhead,
	}
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PUT("/:hotelId", h.update)
	rg.DELETE("/:hotelId", h.remove)
}

func (h *hotelHandler) create(c *gin.Context) {
	form, files, err := readForm(c, limits{maxFile: h.maxFile, maxFiles: hotel.MaxCreateImages, maxBody: h.maxBody})
	if err != nil {
		h.fail(c, err, "Something went wrong", "")
		return
	}
	in, err := hotel.ParseCreate(form)
	if err != nil {
		h.fail(c, err, "Something went wrong", "")
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), in, files)
	if err != nil {
		h.fail(c, err, "Something went wrong", "")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *hotelHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, "Error fetching hotels", "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *hotelHandler) get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), hotelID(c, "id"))
	if err != nil {
		h.fail(c, err, "Error fetching hotel", "Hotel not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *hotelHandler) update(c *gin.Context) {
	form, files, err := readForm(c, limits{maxFile: h.maxFile, maxBody: h.maxBody})
	if err != nil {
		h.fail(c, err, "Error updating hotel", "")
		return
	}
	patch, err := hotel.ParsePatch(form)
	if err != nil {
		h.fail(c, err, "Error updating hotel", "")
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), hotelID(c, "hotelId"), patch, files)
	if err != nil {
		h.fail(c, err, "Error updating hotel", "Hotel not found")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *hotelHandler) remove(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), hotelID(c, "hotelId"))
	if err != nil {
		h.fail(c, err, "Error deleting hotel", "Hotel not found or not owned by user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotel deleted successfully"})
}

var errBadForm = errors.New("malformed form")

func hotelID(c *gin.Context, param string) string {
	return strings.TrimSpace(c.Param(param))
}

// fail maps a service error to its HTTP shape. Internal detail is logged,
// never returned.
func (h *hotelHandler) fail(c *gin.Context, err error, internalMsg, notFoundMsg string) {
	if fe, ok := hotel.AsFieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid hotel data", "errors": fe})
		return
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("Request body must be at most %d MB", tooLarge.Limit>>20)})
	case errors.Is(err, errBadForm):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data"})
	case errors.Is(err, service.ErrNotFound) && notFoundMsg != "":
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMsg})
	case errors.Is(err, media.ErrRelayTimeout):
		logger.With("method", c.Request.Method, "path", c.FullPath(), "userId", middleware.UserID(c)).Warnf("image relay timed out: %v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"message": "Image upload timed out"})
	default:
		logger.With("method", c.Request.Method, "path", c.FullPath(), "userId", middleware.UserID(c)).Errorf("%s: %v", internalMsg, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalMsg})
	}
}

// readForm reads a multipart (or urlencoded) body into a raw hotel.Form and
// the uploaded image files. A userId field, if sent, is never read. The body is
// capped at lim.maxBody and file limits are checked before any file is read.
func readForm(c *gin.Context, lim limits) (hotel.Form, []media.File, error) {
	r := c.Request
	if lim.maxBody > 0 {
		r.Body = http.MaxBytesReader(c.Writer, r.Body, lim.maxBody)
	}
	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return hotel.Form{}, nil, fmt.Errorf("%w: %w", errBadForm, err)
	}

	vals := r.PostForm
	str := func(key string) *string {
		v, ok := vals[key]
		if !ok || len(v) == 0 {
			return nil
		}
		s := v[0]
		return &s
	}
	form := hotel.Form{
		Name:          str("name"),
		City:          str("city"),
		Country:       str("country"),
		Description:   str("description"),
		Type:          str("type"),
		PricePerNight: str("pricePerNight"),
		StarRating:    str("starRating"),
		AdultCount:    str("adultCount"),
		ChildCount:    str("childCount"),
		Facilities:    listField(vals, "facilities"),
		ImageURLs:     listField(vals, "imageUrls"),
	}

	if r.MultipartForm == nil {
		return form, nil, nil
	}
	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File[fileField]...)
	headers = append(headers, r.MultipartForm.File[fileField+"[]"]...)
	if lim.maxFiles > 0 && len(headers) > lim.maxFiles {
		return hotel.Form{}, nil, hotel.FieldErrors{{Field: fileField, Message: hotel.Message(fileField)}}
	}
	for _, fh := range headers {
		if fh.Size > lim.maxFile {
			return hotel.Form{}, nil, hotel.FieldErrors{{
				Field:   fileField,
				Message: fmt.Sprintf("Each image must be at most %d MB", lim.maxFile>>20),
			}}
		}
	}
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return hotel.Form{}, nil, fmt.Errorf("%w: %v", errBadForm, err)
		}
		files = append(files, f)
	}
	return form, files, nil
}

func readFile(fh *multipart.FileHeader) (media.File, error) {
	src, err := fh.Open()
	if err != nil {
		return media.File{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return media.File{}, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return media.File{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

// listField collects a repeated field. Browsers built on FormData send
// either repeated keys (`facilities`) or indexed keys (`facilities[0]`);
// indexed entries are ordered by index. Nil means the field was absent.
func listField(vals map[string][]string, key string) []string {
	var out []string
	if v, ok := vals[key]; ok {
		out = append(out, v...)
	}
	if v, ok := vals[key+"[]"]; ok {
		out = append(out, v...)
	}

	type indexed struct {
		i int
		v []string
	}
	var idx []indexed
	prefix := key + "["
	for k, v := range vals {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || !strings.HasSuffix(rest, "]") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
		if err != nil || n < 0 {
			continue
		}
		idx = append(idx, indexed{i: n, v: v})
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a].i < idx[b].i })
	for _, e := range idx {
		out = append(out, e.v...)
	}
	if out == nil {
		if _, ok := vals[key]; ok {
			return []string{}
		}
	}
	return out
}
