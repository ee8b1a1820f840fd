package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"webmaker-events-api/repositories"
	"webmaker-events-api/utils"
)

const suggestionCacheTTL = 5 * time.Minute

type TagController struct {
	tags  *repositories.TagRepository
	cache *redis.Client // nil when no cache is configured
}

func NewTagController(db *gorm.DB, cache *redis.Client) *TagController {
	return &TagController{
		tags:  repositories.NewTagRepository(db),
		cache: cache,
	}
}

// GetTags serves typeahead tag suggestions ordered by usage. Results are
// cached briefly; the tag table is additive so short staleness is harmless.
func (tc *TagController) GetTags(c *gin.Context) {
	like := c.Query("like")
	if like == "" {
		utils.SendError(c, http.StatusInternalServerError, `Must provide a "like" query value.`)
		return
	}

	cacheKey := "tag-suggest:" + like

	if tc.cache != nil {
		if cached, err := tc.cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var names []string
			if json.Unmarshal([]byte(cached), &names) == nil {
				c.JSON(http.StatusOK, names)
				return
			}
		}
	}

	names, err := tc.tags.Suggest(like)
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	if tc.cache != nil {
		if encoded, err := json.Marshal(names); err == nil {
			tc.cache.Set(c.Request.Context(), cacheKey, encoded, suggestionCacheTTL)
		}
	}

	c.JSON(http.StatusOK, names)
}
