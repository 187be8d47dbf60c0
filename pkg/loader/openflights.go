// Package loader reads the OpenFlights airports.dat and routes.dat files and
// builds the undirected airport graph.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
)

// nullField is the OpenFlights marker for a missing value
const nullField = `\N`

// Column positions
const (
	airportID      = 0
	airportName    = 1
	airportCity    = 2
	airportCountry = 3
	airportIATA    = 4
	airportICAO    = 5
	airportLat     = 6
	airportLon     = 7
	airportColumns = 8

	routeAirline = 0
	routeSrcCode = 2
	routeSrcID   = 3
	routeDstCode = 4
	routeDstID   = 5
	routeStops   = 7
	routeColumns = 6
)

// ErrMalformed marks a row that cannot be parsed
var ErrMalformed = errors.New("malformed record")

// Airport is one row of airports.dat
type Airport struct {
	ID        graph.NodeID
	Name      string
	City      string
	Country   string
	IATA      string
	ICAO      string
	Lat       float64
	Lon       float64
	HasCoords bool
}

// Route is one row of routes.dat
type Route struct {
	Airline string
	SrcCode string
	SrcID   graph.NodeID
	DstCode string
	DstID   graph.NodeID
	Stops   int
}

// Stats counts what a load kept and dropped
type Stats struct {
	Airports        int `json:"airports"`
	AirportsSkipped int `json:"airports_skipped"`
	Routes          int `json:"routes"`
	RoutesSkipped   int `json:"routes_skipped"`
	Nodes           int `json:"nodes"`
	Edges           int `json:"edges"`
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[i])
	if v == nullField {
		return ""
	}
	return v
}

func parseID(s string) (graph.NodeID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", ErrMalformed, s)
	}
	return graph.NodeID(n), nil
}

// ReadAirports parses airports.dat. Rows without a numeric id are skipped and
// counted; rows with unparseable coordinates are kept without coordinates.
func ReadAirports(r io.Reader) ([]Airport, int, error) {
	reader := newReader(r)
	var airports []Airport
	skipped := 0

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("airports line %d: %w", line, err)
		}
		if len(record) < airportColumns {
			skipped++
			continue
		}
		id, err := parseID(field(record, airportID))
		if err != nil {
			skipped++
			continue
		}

		ap := Airport{
			ID:      id,
			Name:    field(record, airportName),
			City:    field(record, airportCity),
			Country: field(record, airportCountry),
			IATA:    field(record, airportIATA),
			ICAO:    field(record, airportICAO),
		}
		lat, errLat := strconv.ParseFloat(field(record, airportLat), 64)
		lon, errLon := strconv.ParseFloat(field(record, airportLon), 64)
		if errLat == nil && errLon == nil && geo.ValidCoords(lat, lon) {
			ap.Lat, ap.Lon, ap.HasCoords = lat, lon, true
		}
		airports = append(airports, ap)
	}
	return airports, skipped, nil
}

// ReadRoutes parses routes.dat. Rows whose airport ids are missing or not
// numeric are skipped and counted.
func ReadRoutes(r io.Reader) ([]Route, int, error) {
	reader := newReader(r)
	var routes []Route
	skipped := 0

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("routes line %d: %w", line, err)
		}
		if len(record) < routeColumns {
			skipped++
			continue
		}
		src, errSrc := parseID(field(record, routeSrcID))
		dst, errDst := parseID(field(record, routeDstID))
		if errSrc != nil || errDst != nil {
			skipped++
			continue
		}
		stops, _ := strconv.Atoi(field(record, routeStops))
		routes = append(routes, Route{
			Airline: field(record, routeAirline),
			SrcCode: field(record, routeSrcCode),
			SrcID:   src,
			DstCode: field(record, routeDstCode),
			DstID:   dst,
			Stops:   stops,
		})
	}
	return routes, skipped, nil
}

// Build assembles the airport graph. Only airports with valid coordinates
// become nodes; a route becomes an edge when both endpoints are nodes and
// differ. Parallel routes collapse into one edge.
func Build(airports []Airport, routes []Route, distance geo.DistanceFunc) *graph.Graph {
	g := graph.New()
	for _, ap := range airports {
		if !ap.HasCoords {
			continue
		}
		g.AddNode(ap.ID, graph.NodeAttrs{
			Name:      ap.Name,
			City:      ap.City,
			Country:   ap.Country,
			Code:      ap.IATA,
			ICAO:      ap.ICAO,
			Lat:       ap.Lat,
			Lon:       ap.Lon,
			HasCoords: true,
		})
	}

	for _, r := range routes {
		if r.SrcID == r.DstID || !g.HasNode(r.SrcID) || !g.HasNode(r.DstID) || g.HasEdge(r.SrcID, r.DstID) {
			continue
		}
		attrs := graph.EdgeAttrs{}
		if d, ok := geo.NodeDistance(g, r.SrcID, r.DstID, distance); ok {
			attrs.DistanceKM, attrs.HasDistance = d, true
		}
		_ = g.AddEdge(r.SrcID, r.DstID, attrs)
	}
	return g
}

// Load reads both files and builds the graph
func Load(airportsPath, routesPath string, logger logging.Logger) (*graph.Graph, Stats, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var stats Stats
	timer := logging.StartTimer(logger, "openflights loaded", logging.Component("loader"))

	af, err := os.Open(airportsPath)
	if err != nil {
		return nil, stats, fmt.Errorf("open airports: %w", err)
	}
	defer af.Close()
	airports, skipped, err := ReadAirports(af)
	if err != nil {
		return nil, stats, err
	}
	stats.Airports, stats.AirportsSkipped = len(airports), skipped

	rf, err := os.Open(routesPath)
	if err != nil {
		return nil, stats, fmt.Errorf("open routes: %w", err)
	}
	defer rf.Close()
	routes, skipped, err := ReadRoutes(rf)
	if err != nil {
		return nil, stats, err
	}
	stats.Routes, stats.RoutesSkipped = len(routes), skipped

	g := Build(airports, routes, nil)
	stats.Nodes, stats.Edges = g.NodeCount(), g.EdgeCount()

	timer.End(
		logging.Nodes(stats.Nodes),
		logging.Edges(stats.Edges),
		logging.Int("airports_skipped", stats.AirportsSkipped),
		logging.Int("routes_skipped", stats.RoutesSkipped),
	)
	return g, stats, nil
}

// LoadDir loads airportsFile and routesFile from dir
func LoadDir(dir, airportsFile, routesFile string, logger logging.Logger) (*graph.Graph, Stats, error) {
	return Load(filepath.Join(dir, airportsFile), filepath.Join(dir, routesFile), logger)
}
