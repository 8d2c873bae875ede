package physics

import (
	"fmt"
	"math"
)

// Species is one of the three absorbers of ionizing photons in primordial
// gas.
type Species int

const (
	HI Species = iota
	HeI
	HeII
)

func (s Species) String() string {
	switch s {
	case HI:
		return "HI"
	case HeI:
		return "HeI"
	case HeII:
		return "HeII"
	}
	return fmt.Sprintf("Species(%d)", int(s))
}

// Threshold returns the ionization energy of the species in eV.
func (s Species) Threshold() float64 {
	return vernerFits[s].eth
}

type vernerFit struct {
	eth, e0, sigma0, ya, p, yw, y0, y1 float64
}

// Verner et al. (1996), Table 1. sigma0 is in Mb.
var vernerFits = [3]vernerFit{
	HI:   {13.6, 4.298e-1, 5.475e4, 3.288e1, 2.963, 0, 0, 0},
	HeI:  {24.59, 1.361e1, 9.492e2, 1.469, 3.188, 2.039, 4.434e-1, 2.136},
	HeII: {54.42, 1.720, 1.369e4, 3.288e1, 2.963, 0, 0, 0},
}

// PhotoIonizationCrossSection returns the cross section of the species at
// photon energy E (eV) in cm^2, using the fits of Verner et al. (1996).
// Photons below threshold have zero cross section.
func PhotoIonizationCrossSection(E float64, s Species) float64 {
	f := &vernerFits[s]
	if E < f.eth {
		return 0
	}

	x := E/f.e0 - f.y0
	y := math.Sqrt(x*x + f.y1*f.y1)
	F := ((x-1)*(x-1) + f.yw*f.yw) * math.Pow(y, 0.5*f.p-5.5) *
		math.Pow(1+math.Sqrt(y/f.ya), -f.p)

	return f.sigma0 * F * 1e-18
}

var approxSigma0 = [3]float64{HI: 6.3e-18, HeI: 7.83e-18, HeII: 1.58e-18}

// ApproximatePhotoIonizationCrossSection returns the E^-3 approximation to
// the cross section of the species in cm^2.
func ApproximatePhotoIonizationCrossSection(E float64, s Species) float64 {
	eth := vernerFits[s].eth
	if E < eth {
		return 0
	}
	return approxSigma0[s] * math.Pow(E/eth, -3)
}
