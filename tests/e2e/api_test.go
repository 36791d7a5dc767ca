package e2e

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/go-shorty/shorty/internal/config"
	"github.com/go-shorty/shorty/internal/database/postgres"
	"github.com/go-shorty/shorty/internal/models"
	"github.com/go-shorty/shorty/tests"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type APITestSuite struct {
	suite.Suite
	cfg      *config.Config
	db       *sqlx.DB
	linkRepo *postgres.LinkRepository
	e        *httpexpect.Expect
}

func (suite *APITestSuite) SetupSuite() {
	root, err := tests.FindProjectRoot()
	if err != nil {
		suite.T().Fatalf("Failed to get project root: %v", err)
	}

	configPath := filepath.Join(root, os.Getenv("CONFIG_PATH"))

	suite.cfg, err = config.Load(configPath)
	if err != nil {
		suite.T().Fatalf("Failed to load config: %v", err)
	}

	suite.db, err = sqlx.Connect("pgx", suite.cfg.Postgres.DSN())
	if err != nil {
		suite.T().Fatalf("Failed to connect to database: %v", err)
	}
	suite.T().Cleanup(func() {
		suite.db.Close()
	})

	suite.linkRepo = postgres.NewLinkRepository(suite.db)

	baseURL := fmt.Sprintf("http://localhost:%d", suite.cfg.HTTPServer.Port)
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  baseURL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *APITestSuite) TearDownSubTest() {
	_, err := suite.db.Exec(`TRUNCATE TABLE links RESTART IDENTITY CASCADE`)
	if err != nil {
		suite.T().Fatalf("Failed to clean links table: %v", err)
	}
}

func (suite *APITestSuite) TestHealth() {
	suite.Run("success", func() {
		resp := suite.e.GET("/health").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("status", "OK")
		resp.HasValue("database", "Connected")
	})
}

func (suite *APITestSuite) TestShortenLink() {
	const path = "/api/shorten"

	suite.Run("empty request body", func() {
		resp := suite.e.POST(path).
			WithHeader("Content-Type", "application/json").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "Request body is empty")
	})

	suite.Run("validation error", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"originalUrl": "invalid url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("error", "Validation failed")
	})

	suite.Run("success", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"originalUrl": "https://example.com"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.ContainsKey("shortCode")
		resp.ContainsKey("shortUrl")
		resp.HasValue("originalUrl", "https://example.com")
	})
}

func (suite *APITestSuite) TestRedirect() {
	path := "/%s"

	suite.Run("link not found", func() {
		suite.e.GET(fmt.Sprintf(path, "nosuch")).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("text/html")
	})

	suite.Run("success", func() {
		link, err := suite.linkRepo.Create(context.Background(), "abc123", "https://example.com")
		if err != nil {
			suite.T().Fatalf("Failed to create link: %v", err)
		}

		suite.e.GET(fmt.Sprintf(path, link.ShortCode)).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")

		link, err = suite.linkRepo.GetByShortCode(context.Background(), link.ShortCode)
		if err != nil {
			suite.T().Fatalf("Failed to retrieve link record: %v", err)
		}

		suite.Equal(int64(1), link.Clicks)
	})
}

func (suite *APITestSuite) TestAdminURLs() {
	const path = "/api/admin/urls"

	suite.Run("full lifecycle", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"originalUrl": "https://example.com",
				"customCode":  "abc123",
			}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.HasValue("shortCode", "abc123")

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Array().Length().IsEqual(1)

		suite.e.PUT(path+"/abc123").
			WithJSON(map[string]string{"originalUrl": "https://new-example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("originalUrl", "https://new-example.com")

		suite.e.DELETE(path+"/abc123").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("message", "URL deleted successfully")

		suite.e.GET(path+"/abc123").
			Expect().
			Status(http.StatusNotFound)
	})
}

func (suite *APITestSuite) TestStats() {
	const path = "/api/admin/stats"

	suite.Run("aggregates clicks", func() {
		link, err := suite.linkRepo.Create(context.Background(), "abc123", "https://example.com")
		if err != nil {
			suite.T().Fatalf("Failed to create link: %v", err)
		}

		err = suite.linkRepo.RecordClick(context.Background(), link.ShortCode, models.ClickEvent{
			Timestamp: time.Now().UTC(),
			UserAgent: "Chrome/120.0",
			Referer:   models.DirectReferer,
		})
		if err != nil {
			suite.T().Fatalf("Failed to record click: %v", err)
		}

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("totalUrls", 1)
		resp.HasValue("totalClicks", 1)
		resp.Value("topUrls").Array().Length().IsEqual(1)
	})
}

func TestAPI(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	suite.Run(t, new(APITestSuite))
}
