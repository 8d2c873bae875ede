/*package physics contains the atomic physics of primordial gas: photo-
ionization cross sections, the deposition of fast secondary electron energy,
and the 21-cm hyperfine line of neutral hydrogen.
*/
package physics

import (
	"github.com/phil-mansfield/ares/cosmo"
)

// Fundamental constants, cgs. These are the same values used by package
// cosmo.
const (
	C        = cosmo.C
	KBoltz   = cosmo.KBoltz
	HPlanck  = cosmo.HPlanck
	MH       = cosmo.MH
	MHe      = cosmo.MHe
	G        = cosmo.G
	SigmaSB  = cosmo.SigmaSB
	SigmaT   = cosmo.SigmaT
	ErgPerEV = cosmo.ErgPerEV
	KmPerMpc = cosmo.KmPerMpc
	CmPerMpc = cosmo.CmPerMpc
	SPerMyr  = cosmo.SPerMyr
)

// 21-cm and Lyman series constants.
const (
	Nu0    = 1420.4057e6 // Hz
	Nu0MHz = 1420.4057
	TStar  = 0.068    // K, h nu0 / k_B
	A10    = 2.85e-15 // s^-1
	ELyA   = 10.2     // eV
	ELL    = 13.6     // eV
	// J21 is the conventional unit of specific intensity,
	// erg / s / cm^2 / Hz / sr.
	J21 = 1e-21
	// NuLyA is the frequency of Lyman-alpha in Hz.
	NuLyA = ELyA * ErgPerEV / HPlanck
)

// tinyNumber stands in for zero where downstream code takes logarithms.
const tinyNumber = 1e-20
