// Package console serves the server-rendered owner pages: the list of the
// caller's hotels and the delete confirmation flow.
package console

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/service"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/middleware"
)

const (
	KindSuccess = "SUCCESS"
	KindError   = "ERROR"

	deletedNotice = "Hotel deleted successfully!"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("console").Funcs(template.FuncMap{
	"price": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/*.html"))

type page struct {
	Title   string
	Base    string
	Notice  string
	Kind    string
	Message string
	Hotels  []*hotel.Hotel
	Hotel   *hotel.Hotel
}

type consoleHandler struct {
	svc  *service.Service
	base string
}

// RegisterConsoleRoutes mounts the owner pages on rg, normally /my-hotels
// behind AuthMiddleware.
func RegisterConsoleRoutes(rg *gin.RouterGroup, svc *service.Service) {
	h := &consoleHandler{svc: svc, base: rg.BasePath()}
	rg.GET("", h.list)
	rg.GET("/:id/delete", h.confirm)
	rg.POST("/:id/delete", middleware.SameOrigin(), h.remove)
}

func (h *consoleHandler) render(c *gin.Context, code int, name string, p page) {
	p.Base = h.base
	c.Render(code, render.HTML{Template: pages, Name: name, Data: p})
}

func (h *consoleHandler) list(c *gin.Context) {
	hotels, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Errorf("console list for %s: %v", middleware.UserID(c), err)
		h.render(c, http.StatusInternalServerError, "message.html", page{Title: "Something went wrong", Message: "Error fetching hotels"})
		return
	}
	p := page{Title: "My Hotels", Hotels: hotels}
	if n := c.Query("notice"); n != "" {
		p.Notice = n
		p.Kind = KindSuccess
		if c.Query("kind") == KindError {
			p.Kind = KindError
		}
	}
	h.render(c, http.StatusOK, "list.html", p)
}

func (h *consoleHandler) confirm(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	h.render(c, http.StatusOK, "confirm.html", page{Title: "Delete " + rec.Name, Hotel: rec})
}

func (h *consoleHandler) remove(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	switch {
	case err == nil:
		h.redirect(c, deletedNotice, KindSuccess)
	case errors.Is(err, service.ErrNotFound):
		h.redirect(c, "Hotel not found or not owned by user", KindError)
	default:
		logger.Errorf("console delete %s for %s: %v", c.Param("id"), middleware.UserID(c), err)
		h.redirect(c, "Error deleting hotel", KindError)
	}
}

func (h *consoleHandler) redirect(c *gin.Context, notice, kind string) {
	q := url.Values{"notice": {notice}, "kind": {kind}}
	c.Redirect(http.StatusSeeOther, h.base+"?"+q.Encode())
}

func (h *consoleHandler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.render(c, http.StatusNotFound, "message.html", page{Title: "Hotel not found", Message: "This hotel does not exist or is not yours."})
		return
	}
	logger.Errorf("console: %v", err)
	h.render(c, http.StatusInternalServerError, "message.html", page{Title: "Something went wrong", Message: "Error fetching hotel"})
}
