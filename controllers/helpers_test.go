package controllers_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"webmaker-events-api/config"
	"webmaker-events-api/models"
	"webmaker-events-api/routes"
	"webmaker-events-api/services"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Event{},
		&models.Tag{},
		&models.Coorganizer{},
		&models.Mentor{},
		&models.MentorRequest{},
		&models.CoorganizerRequest{},
		&models.Attendee{},
	))

	return db
}

// fakeIdentity is an in-memory stand-in for the login service.
type fakeIdentity struct {
	accounts map[int64]services.UserAccount
}

func (f *fakeIdentity) ByIDs(_ context.Context, ids []int64) (map[int64]services.UserAccount, error) {
	result := make(map[int64]services.UserAccount, len(ids))
	for _, id := range ids {
		if account, ok := f.accounts[id]; ok {
			result[id] = account
		}
	}
	return result, nil
}

func (f *fakeIdentity) ByEmail(_ context.Context, email string) (*services.UserAccount, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			a := account
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentity) ByUsername(_ context.Context, username string) (*services.UserAccount, error) {
	for _, account := range f.accounts {
		if account.Username == username {
			a := account
			return &a, nil
		}
	}
	return nil, nil
}

// fakeNotifier records lifecycle notifications instead of dialing SMTP.
type fakeNotifier struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (f *fakeNotifier) EventCreated(_ services.UserAccount, event *models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, event.Title)
}

func (f *fakeNotifier) EventDeleted(_ services.UserAccount, event *models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, event.Title)
}

func setupServer(t *testing.T) (*gorm.DB, *fakeIdentity, *fakeNotifier, *gin.Engine) {
	t.Helper()

	db := newTestDB(t)
	identity := &fakeIdentity{accounts: map[int64]services.UserAccount{}}
	notifier := &fakeNotifier{}

	cfg := &config.Config{JWTSecret: testSecret}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg, identity, notifier, nil)

	return db, identity, notifier, router
}

func sessionToken(t *testing.T, id int64, username, email string, isAdmin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id":  id,
		"username": username,
		"email":    email,
		"isAdmin":  isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
