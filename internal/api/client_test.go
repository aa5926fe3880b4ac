package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret-token"

// backend is an in-memory stand-in for the RateMyRecipe server.
type backend struct {
	mu         sync.Mutex
	recipes    []gin.H
	favorites  map[int64]bool
	lastCreate gin.H
	lastRating gin.H
	requestIDs []string
}

func (b *backend) snapshot() (favorites map[int64]bool, created, rating gin.H, requestIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	favorites = make(map[int64]bool, len(b.favorites))
	for id, on := range b.favorites {
		favorites[id] = on
	}
	return favorites, b.lastCreate, b.lastRating, append([]string(nil), b.requestIDs...)
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backend{
		recipes: []gin.H{
			{"id": 1, "title": "Avocado Toast", "description": "Crispy bread", "category": "Frühstück",
				"rating": 4.7, "cookTime": 15, "servings": 2, "difficulty": "Einfach",
				"ingredients": []string{"2 slices bread", "1 avocado"},
				"instructions": []string{"Toast the bread", "Mash the avocado"}},
			{"id": 2, "title": "Pizza Margherita", "description": "Tomato and mozzarella", "category": "Hauptgericht",
				"averageRating": 4.9, "ratingCount": 12, "instructions": "Knead\nBake\n",
				"imageUrl": "https://example.com/pizza.jpg", "author": gin.H{"id": 7, "username": "bruno"}},
			{"id": 3, "title": "Tiramisu", "category": "dessert", "author": "anna"},
		},
		favorites: map[int64]bool{},
	}

	authorized := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+testToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Next()
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		b.mu.Lock()
		b.requestIDs = append(b.requestIDs, c.GetHeader("X-Request-ID"))
		b.mu.Unlock()
		c.Next()
	})
	api := r.Group("/api")
	api.GET("/recipes", func(c *gin.Context) {
		c.JSON(http.StatusOK, b.recipes)
	})
	api.GET("/recipes/:id", func(c *gin.Context) {
		for _, rec := range b.recipes {
			if strconv.Itoa(rec["id"].(int)) == c.Param("id") {
				c.JSON(http.StatusOK, rec)
				return
			}
		}
		c.String(http.StatusNotFound, "Recipe not found")
	})
	api.POST("/recipes", authorized, func(c *gin.Context) {
		var body gin.H
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.lastCreate = body
		b.mu.Unlock()
		body["id"] = 42
		c.JSON(http.StatusOK, body)
	})
	api.GET("/favorites", authorized, func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []gin.H{}
		for _, rec := range b.recipes {
			if b.favorites[int64(rec["id"].(int))] {
				out = append(out, rec)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	api.POST("/favorites", authorized, func(c *gin.Context) {
		var body struct {
			RecipeID int64 `json:"recipeId"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RecipeID == 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.favorites[body.RecipeID] {
			c.String(http.StatusBadRequest, "Recipe already in favorites")
			return
		}
		b.favorites[body.RecipeID] = true
		c.String(http.StatusOK, "Recipe added to favorites")
	})
	api.DELETE("/favorites/:id", authorized, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.favorites, id)
		c.String(http.StatusOK, "Favorite removed")
	})
	api.POST("/ratings/:id", authorized, func(c *gin.Context) {
		var body gin.H
		_ = c.ShouldBindJSON(&body)
		body["recipe"] = c.Param("id")
		b.mu.Lock()
		b.lastRating = body
		b.mu.Unlock()
		c.String(http.StatusOK, "Rating added")
	})
	api.POST("/auth/login", func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.Username != "bruno" || body.Password != "pw" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Error: Username or password incorrect!"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": testToken, "id": 7, "username": "bruno",
			"email": "bruno@example.com", "roles": []string{"ROLE_USER"}})
	})
	api.POST("/auth/signup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"accessToken": testToken, "id": 8, "username": "anna"})
	})
	r.GET("/images/:name", func(c *gin.Context) {
		if c.Param("name") != "pizza.png" {
			c.Status(http.StatusNotFound)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 4, 2))
		img.Set(1, 1, color.RGBA{R: 200, A: 255})
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func TestListRecipesDecodesBothShapes(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api/")

	recipes, err := client.ListRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	toast := recipes[0]
	assert.Equal(t, model.CategoryBreakfast, toast.Category)
	assert.Equal(t, model.DifficultyEasy, toast.Difficulty)
	assert.Equal(t, 15, toast.CookTimeMinutes)
	assert.Equal(t, []string{"Toast the bread", "Mash the avocado"}, toast.Instructions)

	pizza := recipes[1]
	assert.Equal(t, model.CategoryMainCourse, pizza.Category)
	assert.InDelta(t, 4.9, pizza.Rating, 0.001)
	assert.Equal(t, 12, pizza.RatingCount)
	assert.Equal(t, []string{"Knead", "Bake"}, pizza.Instructions)
	assert.Equal(t, "bruno", pizza.Author)
	assert.Equal(t, model.DefaultDifficulty, pizza.Difficulty)

	tiramisu := recipes[2]
	assert.Equal(t, "anna", tiramisu.Author)
	assert.Zero(t, tiramisu.Rating)
	assert.Zero(t, tiramisu.CookTimeMinutes)
}

func TestListRecipesRejectsMalformedRecord(t *testing.T) {
	b, srv := newBackend(t)
	b.recipes = append(b.recipes, gin.H{"id": 9, "title": "Mystery", "category": "snacks"})
	client := NewClient(srv.URL + "/api")

	_, err := client.ListRecipes(context.Background())

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, int64(9), verr.RecipeID)
	assert.Equal(t, "category", verr.Field)
}

func TestGetRecipe(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	r, err := client.GetRecipe(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Tiramisu", r.Title)

	_, err = client.GetRecipe(context.Background(), 99)
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.Code)
	assert.Equal(t, "Recipe not found", serr.Message)
	assert.Equal(t, "/recipes/99", serr.Path)
}

func TestRequestsCarryRequestID(t *testing.T) {
	b, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	_, err := client.ListRecipes(context.Background())
	require.NoError(t, err)
	_, err = client.ListRecipes(context.Background())
	require.NoError(t, err)

	_, _, _, requestIDs := b.snapshot()
	require.Len(t, requestIDs, 2)
	for _, id := range requestIDs {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, requestIDs[0], requestIDs[1])
}

func TestNewClientBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://localhost:9000/api", NewClient("http://localhost:9000/api//").BaseURL())
}

func TestFavoritesRoundTrip(t *testing.T) {
	b, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")
	ctx := context.Background()

	ids, err := client.ListFavorites(ctx, testToken)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, client.AddFavorite(ctx, testToken, 2))
	require.NoError(t, client.AddFavorite(ctx, testToken, 3))
	ids, err = client.ListFavorites(ctx, testToken)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids)

	require.NoError(t, client.RemoveFavorite(ctx, testToken, 2))
	favorites, _, _, _ := b.snapshot()
	assert.Equal(t, map[int64]bool{3: true}, favorites)
}

func TestListFavoritesSkipsEntriesWithoutRecipeID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/favorites", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"recipeId": 2},
			{"id": 100},
			{"id": 9, "recipe": gin.H{"id": 3}},
			{"recipeId": 2},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ids, err := NewClient(srv.URL+"/api").ListFavorites(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestAddFavoriteTwiceIsStatusError(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")
	ctx := context.Background()

	require.NoError(t, client.AddFavorite(ctx, testToken, 1))
	err := client.AddFavorite(ctx, testToken, 1)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadRequest, serr.Code)
	assert.Equal(t, "Recipe already in favorites", serr.Message)
}

func TestFavoritesRequireCredential(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	_, err := client.ListFavorites(context.Background(), "")

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.True(t, serr.Unauthorized())
	assert.Equal(t, "Unauthorized", serr.Message)
}

func TestFavoriteDTOShapes(t *testing.T) {
	title := "Soup"
	tests := []struct {
		name string
		dto  favoriteDTO
		want int64
	}{
		{"recipeId", favoriteDTO{RecipeID: 4}, 4},
		{"recipe object", favoriteDTO{ID: 5, Title: &title}, 5},
		{"favorite entity", favoriteDTO{ID: 100, Recipe: []byte(`{"id": 6}`)}, 6},
		{"bare entity id", favoriteDTO{ID: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dto.recipeID())
		})
	}
}

func TestCreateRecipeSendsBackendLabels(t *testing.T) {
	b, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	id, err := client.CreateRecipe(context.Background(), testToken, model.NewRecipe{
		Title:        "  Fish Tacos ",
		Category:     model.CategoryFish,
		Servings:     3,
		Ingredients:  []string{"cod", "tortillas"},
		Instructions: []string{"Fry", "Assemble"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, created, _, _ := b.snapshot()
	assert.Equal(t, "Fish Tacos", created["title"])
	assert.Equal(t, "Fisch", created["category"])
	assert.Equal(t, "Mittel", created["difficulty"])
	assert.Equal(t, "Fry\nAssemble", created["instructions"])
}

func TestCreateRecipeValidatesFirst(t *testing.T) {
	b, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	_, err := client.CreateRecipe(context.Background(), testToken, model.NewRecipe{Title: "No category"})

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	_, _, _, requestIDs := b.snapshot()
	assert.Empty(t, requestIDs)
}

func TestRateRecipe(t *testing.T) {
	b, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")
	ctx := context.Background()

	require.NoError(t, client.RateRecipe(ctx, testToken, model.NewRating{RecipeID: 2, Stars: 5, Comment: "great"}))
	_, _, rating, _ := b.snapshot()
	assert.Equal(t, float64(5), rating["stars"])
	assert.Equal(t, "2", rating["recipe"])

	err := client.RateRecipe(ctx, testToken, model.NewRating{RecipeID: 2, Stars: 9})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLogin(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	s, err := client.Login(context.Background(), " bruno ", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.Session{
		Token:    testToken,
		UserID:   7,
		Username: "bruno",
		Email:    "bruno@example.com",
		Roles:    []string{"ROLE_USER"},
	}, s)

	_, err = client.Login(context.Background(), "bruno", "wrong")
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Error(), "incorrect")
}

func TestSignupAcceptsAccessToken(t *testing.T) {
	_, srv := newBackend(t)
	client := NewClient(srv.URL + "/api")

	s, err := client.Signup(context.Background(), "anna", "anna@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, testToken, s.Token)
	assert.Equal(t, int64(8), s.UserID)
}

func TestSessionWithoutToken(t *testing.T) {
	_, err := sessionDTO{Username: "x"}.session()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNetworkError(t *testing.T) {
	_, srv := newBackend(t)
	url := srv.URL
	srv.Close()

	metrics := NewMetrics()
	client := NewClient(url+"/api", WithMetrics(metrics))

	_, err := client.ListRecipes(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "network error"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/recipes", "GET", "error")))
}

func TestMetricsCountRequests(t *testing.T) {
	_, srv := newBackend(t)
	metrics := NewMetrics()
	client := NewClient(srv.URL+"/api", WithMetrics(metrics))
	ctx := context.Background()

	_, _ = client.ListRecipes(ctx)
	_, _ = client.ListRecipes(ctx)
	_, _ = client.GetRecipe(ctx, 1)
	_, _ = client.GetRecipe(ctx, 404)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/recipes", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/recipes/{id}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/recipes/{id}", "GET", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.duration))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "ratemyrecipe_api_requests_total")
}

type tokenAuth string

func (a tokenAuth) Credential() (string, bool) { return string(a), a != "" }

func TestClientDrivesCollectionView(t *testing.T) {
	b, srv := newBackend(t)
	b.favorites[1] = true
	client := NewClient(srv.URL + "/api")
	ctx := context.Background()

	view := collection.New(client, client, tokenAuth(testToken))
	require.NoError(t, view.Load(ctx))
	assert.Equal(t, []int64{1}, view.Favorites())

	_, err := view.ToggleFavorite(ctx, 3)
	require.NoError(t, err)
	view.SetFavoritesOnly(true)

	var titles []string
	for _, r := range view.VisibleRecipes() {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Avocado Toast", "Tiramisu"}, titles)
	favorites, _, _, _ := b.snapshot()
	assert.True(t, favorites[3])
}

func TestFetchImage(t *testing.T) {
	_, srv := newBackend(t)
	metrics := NewMetrics()
	client := NewClient(srv.URL+"/api", WithMetrics(metrics))
	ctx := context.Background()

	img, err := client.FetchImage(ctx, srv.URL+"/images/pizza.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	_, err = client.FetchImage(ctx, srv.URL+"/images/missing.png")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)

	_, err = client.FetchImage(ctx, "")
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("image", "GET", "200")))
}
