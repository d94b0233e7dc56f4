package location

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/middleware"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/storage"
)

type Handlers struct {
	*domain.BaseHandler
	svc Service
}

func NewHandlers(svc Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		BaseHandler: domain.NewBaseHandler(logger),
		svc:         svc,
	}
}

// ListLocations handles GET /api/locations.
func (h *Handlers) ListLocations(c *gin.Context) {
	locations, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// GetLocation handles GET /api/locations/:id. With ?include=files the
// response carries the image and document lists.
func (h *Handlers) GetLocation(c *gin.Context) {
	id := c.Param("id")

	if c.Query("include") == "files" {
		loc, err := h.svc.GetWithFiles(c.Request.Context(), id)
		if err != nil {
			h.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, loc)
		return
	}

	loc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// CreateLocation handles POST /api/locations as multipart form data: the
// location fields plus optional "images" and "documents" file parts.
func (h *Handlers) CreateLocation(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	lat, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be numbers"})
		return
	}

	data := models.LocationFormData{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Latitude:    lat,
		Longitude:   lng,
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	images, closeImages, err := openUploads(form.File["images"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded images"})
		return
	}
	defer closeImages()

	documents, closeDocs, err := openUploads(form.File["documents"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded documents"})
		return
	}
	defer closeDocs()

	loc, partial, err := h.svc.Create(c.Request.Context(), actor, data, images, documents)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	resp := gin.H{"location": loc}
	if partial != nil {
		resp["upload_failures"] = domain.PartialFailures(partial)
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateLocation handles PATCH /api/locations/:id with a partial JSON body.
func (h *Handlers) UpdateLocation(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var update models.LocationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loc, err := h.svc.Update(c.Request.Context(), actor, c.Param("id"), update)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/locations/:id. Soft by default;
// ?hard=true also removes stored files and the row itself.
func (h *Handlers) DeleteLocation(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	mode := DeleteSoft
	if c.Query("hard") == "true" {
		mode = DeleteHard
	}

	partial, err := h.svc.Delete(c.Request.Context(), actor, c.Param("id"), mode)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if partial != nil {
		c.JSON(http.StatusOK, gin.H{"deleted": true, "file_failures": domain.PartialFailures(partial)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ResetLocations handles POST /api/admin/reset: hard-deletes every
// location, reporting the per-location outcome.
func (h *Handlers) ResetLocations(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	outcomes, err := h.svc.ResetAll(c.Request.Context(), actor)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	results := make([]gin.H, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		r := gin.H{"location_id": o.LocationID}
		if o.Err != nil {
			r["error"] = o.Err.Error()
			failed++
		}
		results = append(results, r)
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(outcomes),
		"failed":  failed,
		"results": results,
	})
}

// openUploads opens multipart file headers as upload streams. The returned
// closer releases every opened file.
func openUploads(headers []*multipart.FileHeader) ([]storage.FileUpload, func(), error) {
	uploads := make([]storage.FileUpload, 0, len(headers))
	var opened []interface{ Close() error }

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, f)
		uploads = append(uploads, storage.FileUpload{
			FileName: fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Content:  f,
		})
	}
	return uploads, closeAll, nil
}
