package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var paris = Point{Lat: 48.8566, Lng: 2.3522}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"paris", paris, true},
		{"poles", Point{Lat: 90, Lng: -180}, true},
		{"lat too big", Point{Lat: 91, Lng: 0}, false},
		{"lng too big", Point{Lat: 0, Lng: 181}, false},
		{"nan", Point{Lat: math.NaN(), Lng: 0}, false},
		{"inf", Point{Lat: 0, Lng: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}
