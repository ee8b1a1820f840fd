package controllers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"webmaker-events-api/models"
	"webmaker-events-api/utils"
)

const flickrEndpoint = "https://api.flickr.com/services/rest/"

// FlickrController is a thin passthrough to the Flickr photo search, keyed
// by an event's flickr tag.
type FlickrController struct {
	db     *gorm.DB
	apiKey string
	client *http.Client
}

func NewFlickrController(db *gorm.DB, apiKey string) *FlickrController {
	return &FlickrController{
		db:     db,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (fc *FlickrController) GetEventPhotos(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	var event models.Event
	findErr := fc.db.First(&event, uint(id)).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) ||
		event.FlickrTag == nil || *event.FlickrTag == "" {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	if findErr != nil {
		utils.SendDatastoreError(c, findErr)
		return
	}

	params := url.Values{}
	params.Set("method", "flickr.photos.search")
	params.Set("api_key", fc.apiKey)
	params.Set("tags", strings.ReplaceAll(*event.FlickrTag, ",", "+"))
	params.Set("per_page", c.DefaultQuery("limit", "20"))
	params.Set("page", c.DefaultQuery("page", "1"))
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet,
		flickrEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		utils.SendUpstreamError(c, "flickr", err)
		return
	}

	resp, err := fc.client.Do(req)
	if err != nil {
		utils.SendUpstreamError(c, "flickr", err)
		return
	}
	defer resp.Body.Close()

	c.Status(resp.StatusCode)
	c.Header("Content-Type", "application/json")
	io.Copy(c.Writer, resp.Body)
}
