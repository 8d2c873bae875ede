package cosmo

import (
	"math"
)

// HubbleFrac returns E(z) = H(z)/H0 for a flat universe with matter and a
// cosmological constant. Radiation is ignored.
func HubbleFrac(omegaM, omegaL, z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(omegaM*zp1*zp1*zp1 + omegaL)
}

// RhoCritical returns the critical density at redshift z in h^2 Msun / Mpc^3.
// Because of the h scaling, the value does not depend on H0.
func RhoCritical(omegaM, omegaL, z float64) float64 {
	H := HubbleFrac(omegaM, omegaL, z) * 100 / KmPerMpc // h s^-1
	rho := 3 * H * H / (8 * math.Pi * G)                 // h^2 g / cm^3
	return rho * CmPerMpc * CmPerMpc * CmPerMpc / GPerMSun
}

// RhoAverage returns the mean matter density at redshift z in the units of
// RhoCritical.
func RhoAverage(omegaM, z float64) float64 {
	zp1 := 1 + z
	return omegaM * RhoCritical(1, 0, 0) * zp1 * zp1 * zp1
}
