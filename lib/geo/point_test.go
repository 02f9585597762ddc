package geo

import (
	"testing"
)

func TestPointNear(t *testing.T) {
	p := &Point{10, 10}
	if !p.Near(&Point{10.4, 9.7}, 0.5) {
		t.Fatalf("expected %v to be near (10.4, 9.7)", p.ToString())
	}
	if p.Near(&Point{11, 10}, 0.5) {
		t.Fatalf("expected %v to not be near (11, 10)", p.ToString())
	}
}

