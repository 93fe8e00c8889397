// Package mapserver serves rendered map images and altitude analyses
// over HTTP.
package mapserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/cache"
	"github.com/mholden/osmaps/internal/log"
	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/internal/terrain"
	"github.com/mholden/osmaps/pkg/config"
)

// Controller is the map server: terrain renders, postcode dot maps and
// altitude stats behind a gorilla/mux router.
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	serverConfig config.ServerData
	Server       http.Server

	source       *terrain.Source
	mosaicCache  *cache.Cache // nil disables caching
	store        postcode.Store
	colourScheme string
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates the map server controller. store may be nil
// when no postcode backend is configured; the postcode endpoints then
// report 503.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store postcode.Store, logger *zap.SugaredLogger) (*Controller, error) {
	if cfg.Server == nil {
		return nil, fmt.Errorf("no server section in configuration")
	}

	source, err := terrain.NewSource(cfg.Terrain.DataDir)
	if err != nil {
		return nil, err
	}

	var mosaicCache *cache.Cache
	if cfg.Terrain.CacheDir != "" {
		mosaicCache, err = cache.New(cfg.Terrain.CacheDir)
		if err != nil {
			return nil, err
		}
	}

	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		serverConfig: *cfg.Server,
		source:       source,
		mosaicCache:  mosaicCache,
		store:        store,
		colourScheme: cfg.Terrain.ColourScheme,
		logger:       logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.serverConfig.ListenAddr, ctrl.serverConfig.Port)
	ctrl.Server.Handler = router
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the HTTP server and its shutdown watcher
func (c *Controller) StartController() error {
	log.Infof("Starting map server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("map server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the map server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() http.Handler {
	router := mux.NewRouter()
	router.Use(c.requestLogMiddleware)

	// Terrain endpoints
	router.HandleFunc("/altitude/{square}", c.handlers.GetAltitudeMap)
	router.HandleFunc("/stats/{square}", c.handlers.GetAltitudeStats)
	router.HandleFunc("/grid", c.handlers.GetGridOverview)

	// Postcode endpoints
	router.HandleFunc("/postcode/{postcode}", c.handlers.GetPostcodeMap)
	router.HandleFunc("/area/{area}", c.handlers.GetAreaMap)
	router.HandleFunc("/gridsquare/{square}", c.handlers.GetSquareMap)
	router.HandleFunc("/postcodes", c.handlers.GetAllGBMap)

	// PNG responses compress poorly but the JSON stats don't.
	return handlers.CompressHandler(router)
}

// requestLogMiddleware tags each request with an ID and logs it
func (c *Controller) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugw("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
