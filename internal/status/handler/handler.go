package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/statusboard/statusboard/internal/status"
	"github.com/statusboard/statusboard/pkg/logger"
	"github.com/statusboard/statusboard/pkg/middleware"
)

// Service is the subset of *status.Store the routes depend on.
type Service interface {
	List(ctx context.Context) ([]*status.Status, error)
	Latest(ctx context.Context) (*status.Status, error)
	Get(ctx context.Context, id string) (*status.Status, error)
	Create(ctx context.Context, p status.Param) (*status.Status, error)
	Update(ctx context.Context, id string, p status.Param) (*status.Status, error)
	Delete(ctx context.Context, id string) (*status.Status, error)
}

// Options configures RegisterStatusRoutes.
type Options struct {
	// Secret is compared against the Authorization header of mutating
	// requests. Empty means misconfigured: every request is refused.
	Secret string
	// RejectEmpty makes an empty collection listing a 404 instead of 200 [].
	RejectEmpty bool
	// Middleware runs after authorization and CORS on every status route,
	// e.g. a rate limiter.
	Middleware []gin.HandlerFunc
}

const (
	msgCreated        = "Successfully created a new status."
	msgUpdated        = "Status updated successfully."
	msgDeleted        = "Status deleted successfully."
	msgNotFound       = "Unable to find a status with that ID."
	msgNoStatuses     = "No statuses found."
	msgMissingFields  = "Please provide a title and body for the status."
	msgBadJSON        = "Please provide a valid JSON body."
	msgMissingID      = "Please provide the ID of the status to delete."
	msgPostOnItem     = "POST not valid for individual keys. Did you mean PUT?"
	msgUnsupported    = "Unsupported method. Please use one of GET, PUT, POST, DELETE, HEAD."
	msgInternal       = "Something went wrong while talking to the status store."
	allowItem         = "GET, HEAD, PUT, DELETE"
	allowAllSupported = "GET, PUT, POST, DELETE, HEAD"
)

type routes struct {
	svc  Service
	opts Options
}

// RegisterStatusRoutes mounts the canonical layout (/, /list, /latest, /:id)
// and the legacy aliases (/statuses, /status, /status/:id) on r, plus the
// 405 fallback for everything else. Both layouts serve the same store.
func RegisterStatusRoutes(r *gin.Engine, svc Service, opts Options) {
	h := &routes{svc: svc, opts: opts}

	chain := append([]gin.HandlerFunc{middleware.CORS(), middleware.SharedSecret(opts.Secret)}, opts.Middleware...)
	g := r.Group("/", chain...)

	// canonical
	h.read(g, "/", h.list)
	h.read(g, "/list", h.list)
	h.read(g, "/latest", h.latest)
	g.POST("/", h.create(false))
	g.DELETE("/", h.missingID)
	h.item(g, "/:id")

	// legacy
	h.read(g, "/statuses", h.list)
	h.read(g, "/status", h.latest)
	g.POST("/status", h.create(true))
	g.DELETE("/status", h.missingID)
	h.item(g, "/status/:id")

	// Collection paths sit next to /:id in the tree, so every method
	// must be claimed here or the request would be served as an item.
	for _, p := range []string{"/list", "/statuses"} {
		g.DELETE(p, h.missingID)
		g.POST(p, unsupported)
	}
	g.DELETE("/latest", unsupported)
	g.POST("/latest", unsupported)
	for _, p := range []string{"/", "/list", "/latest", "/statuses", "/status"} {
		g.PUT(p, unsupported)
		g.OPTIONS(p, preflight)
	}

	// gin's method-not-allowed lookup does not cope with static paths
	// beside params, so unknown methods are answered by NoRoute instead.
	r.NoRoute(middleware.CORS(), middleware.SharedSecret(opts.Secret), unsupported)
}

// read registers GET and HEAD for path.
func (h *routes) read(g *gin.RouterGroup, path string, fn gin.HandlerFunc) {
	g.GET(path, fn)
	g.HEAD(path, fn)
}

func (h *routes) item(g *gin.RouterGroup, path string) {
	h.read(g, path, h.get)
	g.PUT(path, h.update)
	g.DELETE(path, h.remove)
	g.POST(path, postOnItem)
	g.OPTIONS(path, preflight)
}

func (h *routes) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if len(list) == 0 && h.opts.RejectEmpty {
		errorJSON(c, http.StatusNotFound, msgNoStatuses)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": list})
}

func (h *routes) latest(c *gin.Context) {
	st, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if st == nil {
		errorJSON(c, http.StatusNotFound, msgNoStatuses)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st})
}

// create handles POST on a collection. The legacy layout answers field
// validation failures with 422 instead of 400.
func (h *routes) create(legacy bool) gin.HandlerFunc {
	invalid := http.StatusBadRequest
	location := "/"
	if legacy {
		invalid = http.StatusUnprocessableEntity
		location = "/status/"
	}
	return func(c *gin.Context) {
		var p status.Param
		if err := c.ShouldBindJSON(&p); err != nil {
			errorJSON(c, http.StatusBadRequest, msgBadJSON)
			return
		}
		st, err := h.svc.Create(c.Request.Context(), p)
		if err != nil {
			if errors.Is(err, status.ErrValidation) {
				errorJSON(c, invalid, msgMissingFields)
				return
			}
			internalError(c, err)
			return
		}
		c.Header("Location", location+st.ID)
		c.JSON(http.StatusCreated, gin.H{"message": msgCreated, "status": st})
	}
}

func (h *routes) get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if st == nil {
		errorJSON(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st})
}

// update replies with the status as it was before the change.
func (h *routes) update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.svc.Get(ctx, id)
	if err != nil {
		internalError(c, err)
		return
	}
	if existing == nil {
		errorJSON(c, http.StatusNotFound, msgNotFound)
		return
	}

	var p status.Param
	if err := c.ShouldBindJSON(&p); err != nil {
		errorJSON(c, http.StatusBadRequest, msgBadJSON)
		return
	}
	prev, err := h.svc.Update(ctx, id, p)
	switch {
	case errors.Is(err, status.ErrValidation):
		errorJSON(c, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, status.ErrNotFound):
		errorJSON(c, http.StatusNotFound, msgNotFound)
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": msgUpdated, "status": prev})
	}
}

// remove replies with the deleted status.
func (h *routes) remove(c *gin.Context) {
	prev, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, status.ErrNotFound):
		errorJSON(c, http.StatusNotFound, msgNotFound)
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": msgDeleted, "status": prev})
	}
}

func (h *routes) missingID(c *gin.Context) {
	errorJSON(c, http.StatusBadRequest, msgMissingID)
}

func postOnItem(c *gin.Context) {
	c.Header("Allow", allowItem)
	errorJSON(c, http.StatusMethodNotAllowed, msgPostOnItem)
}

func unsupported(c *gin.Context) {
	c.Header("Allow", allowAllSupported)
	errorJSON(c, http.StatusMethodNotAllowed, msgUnsupported)
}

// preflight answers OPTIONS once CORS and authorization have run.
func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func errorJSON(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"code": fmt.Sprintf("%d %s", code, http.StatusText(code)), "message": msg})
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Errorf("status store: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	errorJSON(c, http.StatusInternalServerError, msgInternal)
}
