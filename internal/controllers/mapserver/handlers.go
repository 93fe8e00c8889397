package mapserver

import (
	"image"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mholden/osmaps/internal/grid"
	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/internal/stats"
	"github.com/mholden/osmaps/internal/terrain"
	"github.com/mholden/osmaps/internal/water"
	"github.com/mholden/osmaps/pkg/responseformat"
)

// postcodeMapMargin is the half-width, in metres, of the window plotted
// around a single postcode.
const postcodeMapMargin = 5000

// Handlers contains all HTTP handlers for the map server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

func (h *Handlers) writePNG(w http.ResponseWriter, req *http.Request, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := render.EncodePNG(w, img); err != nil {
		h.controller.logger.Errorf("encoding PNG response: %v", err)
	}
}

// loadMosaic resolves an area request and assembles (or recalls) its
// altitude mosaic.
func (h *Handlers) loadMosaic(square, dims string) (*terrain.Mosaic, error) {
	area, err := grid.ResolveArea(square, dims)
	if err != nil {
		return nil, err
	}
	m, hit, err := h.controller.mosaicCache.Load(h.controller.source, area, h.controller.logger)
	if err != nil {
		return nil, err
	}
	if hit {
		h.controller.logger.Debugf("mosaic cache hit for %s", area.Label())
	}
	return m, nil
}

// GetAltitudeMap renders the altitude map for a grid square or area
func (h *Handlers) GetAltitudeMap(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	m, err := h.loadMosaic(vars["square"], req.URL.Query().Get("dims"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	if !m.HasLand {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no GB land in this area")
		return
	}

	scheme, err := h.scheme(req, m.MaxAlt)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	classified := water.Classify(m)
	h.writePNG(w, req, render.Image(m, classified, scheme))
}

// GetAltitudeStats returns the altitude analysis for a grid square or area
func (h *Handlers) GetAltitudeStats(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	m, err := h.loadMosaic(vars["square"], req.URL.Query().Get("dims"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	if !m.HasLand {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no GB land in this area")
		return
	}

	scheme, err := h.scheme(req, m.MaxAlt)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.formatter.WriteResponse(w, req, stats.Analyse(m, scheme)); err != nil {
		h.controller.logger.Errorf("writing stats response: %v", err)
	}
}

func (h *Handlers) scheme(req *http.Request, maxAlt float64) (*render.Scheme, error) {
	name := req.URL.Query().Get("scheme")
	if name == "" {
		name = h.controller.colourScheme
	}
	return render.NewScheme(name, maxAlt)
}

// GetGridOverview renders the National Grid square layout
func (h *Handlers) GetGridOverview(w http.ResponseWriter, req *http.Request) {
	h.writePNG(w, req, render.GridOverview(40))
}

func (h *Handlers) postcodeStore(w http.ResponseWriter, req *http.Request) postcode.Store {
	if h.controller.store == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no postcode store configured")
		return nil
	}
	return h.controller.store
}

// GetPostcodeMap renders the dot map around one postcode
func (h *Handlers) GetPostcodeMap(w http.ResponseWriter, req *http.Request) {
	store := h.postcodeStore(w, req)
	if store == nil {
		return
	}

	vars := mux.Vars(req)
	rec, err := store.ByPostcode(vars["postcode"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil || !rec.Positioned() {
		h.formatter.WriteError(w, req, http.StatusNotFound, "unknown or unpositioned postcode")
		return
	}

	window := postcode.PlotWindow{
		MinEasting:  rec.Easting - postcodeMapMargin,
		MaxEasting:  rec.Easting + postcodeMapMargin,
		MinNorthing: rec.Northing - postcodeMapMargin,
		MaxNorthing: rec.Northing + postcodeMapMargin,
		Height:      800,
	}
	recs, err := store.InWindow(window.MinEasting, window.MinNorthing, window.MaxEasting, window.MaxNorthing)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	h.writePNG(w, req, postcode.DotMap(recs, window))
}

// GetAreaMap renders the dot map for one postcode area
func (h *Handlers) GetAreaMap(w http.ResponseWriter, req *http.Request) {
	store := h.postcodeStore(w, req)
	if store == nil {
		return
	}

	vars := mux.Vars(req)
	recs, err := store.ByArea(vars["area"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	positioned := recs[:0]
	for _, r := range recs {
		if r.Positioned() {
			positioned = append(positioned, r)
		}
	}
	if len(positioned) == 0 {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no plottable postcodes in this area")
		return
	}
	h.writePNG(w, req, postcode.DotMap(positioned, windowAround(positioned)))
}

// GetSquareMap renders the postcode dot map for one 100 km grid square
func (h *Handlers) GetSquareMap(w http.ResponseWriter, req *http.Request) {
	store := h.postcodeStore(w, req)
	if store == nil {
		return
	}

	vars := mux.Vars(req)
	sq, ok := grid.LookupSquare(vars["square"])
	if !ok {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "unknown grid square")
		return
	}
	e, n := sq.SWOrigin()
	window := postcode.PlotWindow{
		MinEasting:  e,
		MaxEasting:  e + grid.MetresPerSquare,
		MinNorthing: n,
		MaxNorthing: n + grid.MetresPerSquare,
		Height:      1000,
	}
	recs, err := store.InWindow(window.MinEasting, window.MinNorthing, window.MaxEasting, window.MaxNorthing)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	h.writePNG(w, req, postcode.DotMap(recs, window))
}

// GetAllGBMap renders the whole-country postcode dot map
func (h *Handlers) GetAllGBMap(w http.ResponseWriter, req *http.Request) {
	store := h.postcodeStore(w, req)
	if store == nil {
		return
	}
	window := postcode.GBWindow(1250)
	recs, err := store.InWindow(window.MinEasting, window.MinNorthing, window.MaxEasting, window.MaxNorthing)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	h.writePNG(w, req, postcode.DotMap(recs, window))
}

// windowAround returns a plot window covering the positioned records
// with a small margin.
func windowAround(recs []postcode.Record) postcode.PlotWindow {
	w := postcode.PlotWindow{Height: 800}
	first := true
	for _, r := range recs {
		if !r.Positioned() {
			continue
		}
		if first {
			w.MinEasting, w.MaxEasting = r.Easting, r.Easting
			w.MinNorthing, w.MaxNorthing = r.Northing, r.Northing
			first = false
			continue
		}
		if r.Easting < w.MinEasting {
			w.MinEasting = r.Easting
		}
		if r.Easting > w.MaxEasting {
			w.MaxEasting = r.Easting
		}
		if r.Northing < w.MinNorthing {
			w.MinNorthing = r.Northing
		}
		if r.Northing > w.MaxNorthing {
			w.MaxNorthing = r.Northing
		}
	}
	// Margin so edge dots aren't clipped by the exclusive max bound.
	w.MinEasting -= 1000
	w.MinNorthing -= 1000
	w.MaxEasting += 1000
	w.MaxNorthing += 1000
	return w
}
