package validation

import (
	"errors"
	"strings"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestSimulateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     SimulateRequest
		wantErr string
	}{
		{"valid short name", SimulateRequest{Strategy: "degree"}, ""},
		{"valid legacy name", SimulateRequest{Strategy: "pagerank_targeted_attack", Runs: 5}, ""},
		{"missing strategy", SimulateRequest{}, "Strategy: field is required"},
		{"unknown strategy", SimulateRequest{Strategy: "closeness"}, "Strategy: must be one of"},
		{"fraction above one", SimulateRequest{Strategy: "random", Fractions: []float64{0, 1.5}}, "Fractions: must be non-decreasing values in [0, 1]"},
		{"decreasing fractions", SimulateRequest{Strategy: "random", Fractions: []float64{0.6, 0.1, 0.3}}, "Fractions: must be non-decreasing"},
		{"repeated fractions", SimulateRequest{Strategy: "random", Fractions: []float64{0, 0.2, 0.2, 0.5}}, ""},
		{"too many runs", SimulateRequest{Strategy: "random", Runs: 5000}, "Runs: must not exceed 1000"},
		{"bad latitude", SimulateRequest{Strategy: "random", BBoxRequest: BBoxRequest{MinLat: ptr(-95)}}, "MinLat: must be at least -90"},
		{"inverted box", SimulateRequest{Strategy: "random", BBoxRequest: BBoxRequest{MinLat: ptr(30), MaxLat: ptr(-10)}}, "minLat 30 exceeds maxLat -10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error %v does not wrap ErrInvalidRequest", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestOtherRequests(t *testing.T) {
	tests := []struct {
		name  string
		req   any
		valid bool
	}{
		{"reinforce ok", &ReinforceRequest{K: 200, MaxDistanceKM: 3000, Strategy: "degree"}, true},
		{"reinforce k too large", &ReinforceRequest{K: 10000, Strategy: "degree"}, false},
		{"reinforce negative distance", &ReinforceRequest{K: 1, MaxDistanceKM: -1, Strategy: "degree"}, false},
		{"swap ok", &SwapRequest{MaxTrials: 20000, Patience: 5000, Strategy: "degree"}, true},
		{"swap zero trials", &SwapRequest{Patience: 1, Strategy: "degree"}, false},
		{"redundancy ok", &RedundancyRequest{M: 10, MaxDistanceKM: 3000}, true},
		{"redundancy zero m", &RedundancyRequest{}, false},
		{"top-k ok", &TopKRequest{By: "betweenness", K: 5}, true},
		{"top-k pagerank rejected", &TopKRequest{By: "pagerank", K: 5}, false},
		{"route ok", &RouteRequest{Source: "HAN", Target: "SGN"}, true},
		{"route same airport", &RouteRequest{Source: "HAN", Target: "HAN"}, false},
		{"route bad code", &RouteRequest{Source: "H-N", Target: "SGN"}, false},
		{"impact ok", &ImpactRequest{Region: "europe", Runs: 5}, true},
		{"impact unknown region", &ImpactRequest{Region: "antarctica", Runs: 5}, false},
		{"impact inverted box", &ImpactRequest{Runs: 5, BBoxRequest: BBoxRequest{MinLon: ptr(150), MaxLon: ptr(90)}}, false},
		{"hubs ok", &HubsRequest{K: 10}, true},
		{"hubs zero k", &HubsRequest{}, false},
		{"route attack ok", &RouteAttackRequest{RouteRequest: RouteRequest{Source: "LHR", Target: "DUB"}, Method: "ter", K: 500}, true},
		{"route attack combo", &RouteAttackRequest{RouteRequest: RouteRequest{Source: "LHR", Target: "DUB"}, Method: "swap", Combo: []string{"DUB", "GLA"}}, true},
		{"route attack bad combo code", &RouteAttackRequest{RouteRequest: RouteRequest{Source: "LHR", Target: "DUB"}, Method: "swap", Combo: []string{"D"}}, false},
		{"route attack unknown method", &RouteAttackRequest{RouteRequest: RouteRequest{Source: "LHR", Target: "DUB"}, Method: "hub"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected an error")
			}
		})
	}
}
